package compat

import (
	"testing"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

var testWeek = model.PlanWeek{Year: 2025, Week: 10}

func newLine(name string) *model.Line {
	return &model.Line{BaseModel: model.BaseModel{ID: uuid.New()}, Name: name, IsActive: true}
}

func newReference(name string) *model.Reference {
	return &model.Reference{BaseModel: model.BaseModel{ID: uuid.New()}, Name: name, IsActive: true}
}

func fullWeekAvailability(lineID uuid.UUID, hours float64) []*model.Availability {
	avs := make([]*model.Availability, 0, 7)
	for day := 0; day < 7; day++ {
		avs = append(avs, &model.Availability{LineID: lineID, DayOfWeek: day, Hours: hours})
	}
	return avs
}

func TestBuild_TotalCapacity(t *testing.T) {
	line := newLine("产线1")
	ref := newReference("参考A")

	cfg := &model.PlanConfig{
		Lines:      []*model.Line{line},
		References: []*model.Reference{ref},
		Throughputs: []*model.Throughput{
			{LineID: line.ID, ReferenceID: ref.ID, RatePerHour: 10},
		},
		Availabilities: fullWeekAvailability(line.ID, 8),
	}

	m := Build(cfg, testWeek)

	entries := m.ForReference(ref.ID)
	if len(entries) != 1 {
		t.Fatalf("条目数 = %d, expected 1", len(entries))
	}
	// 8小时 × 7天 × 10吨/小时
	if entries[0].TotalCapacityTons != 560 {
		t.Errorf("TotalCapacityTons = %.1f, expected 560", entries[0].TotalCapacityTons)
	}
}

func TestBuild_SkipsNonPositiveRate(t *testing.T) {
	line := newLine("产线1")
	ref := newReference("参考A")

	cfg := &model.PlanConfig{
		Lines:      []*model.Line{line},
		References: []*model.Reference{ref},
		Throughputs: []*model.Throughput{
			{LineID: line.ID, ReferenceID: ref.ID, RatePerHour: 0},
		},
		Availabilities: fullWeekAvailability(line.ID, 8),
	}

	m := Build(cfg, testWeek)

	if m.Compatible(line.ID, ref.ID) {
		t.Error("产量为 0 的配置不应产生兼容条目")
	}
	if _, ok := m.Rate(line.ID, ref.ID); ok {
		t.Error("产量为 0 的配置不应可查询")
	}
}

func TestMatrix_PreferredLine(t *testing.T) {
	fast := newLine("快线")
	slow := newLine("慢线")
	ref := newReference("参考A")

	cfg := &model.PlanConfig{
		Lines:      []*model.Line{slow, fast},
		References: []*model.Reference{ref},
		Throughputs: []*model.Throughput{
			{LineID: slow.ID, ReferenceID: ref.ID, RatePerHour: 10},
			{LineID: fast.ID, ReferenceID: ref.ID, RatePerHour: 15},
		},
		Availabilities: append(fullWeekAvailability(slow.ID, 8), fullWeekAvailability(fast.ID, 8)...),
	}

	m := Build(cfg, testWeek)

	lineID, ok := m.PreferredLine(ref.ID)
	if !ok {
		t.Fatal("应存在首选产线")
	}
	if lineID != fast.ID {
		t.Errorf("首选产线应为产量更高的快线")
	}
}

func TestMatrix_PreferredLine_TieBreakByCapacity(t *testing.T) {
	big := newLine("大线")
	small := newLine("小线")
	ref := newReference("参考A")

	// 产量相同，大线可用小时更多
	cfg := &model.PlanConfig{
		Lines:      []*model.Line{small, big},
		References: []*model.Reference{ref},
		Throughputs: []*model.Throughput{
			{LineID: small.ID, ReferenceID: ref.ID, RatePerHour: 10},
			{LineID: big.ID, ReferenceID: ref.ID, RatePerHour: 10},
		},
		Availabilities: append(fullWeekAvailability(small.ID, 4), fullWeekAvailability(big.ID, 12)...),
	}

	m := Build(cfg, testWeek)

	lineID, _ := m.PreferredLine(ref.ID)
	if lineID != big.ID {
		t.Errorf("产量相同时应选整周可达产量更高的产线")
	}
}

func TestMatrix_PreferredLine_TieBreakByOrder(t *testing.T) {
	first := newLine("先配置")
	second := newLine("后配置")
	ref := newReference("参考A")

	// 产量和容量都相同，取矩阵行序在前者
	cfg := &model.PlanConfig{
		Lines:      []*model.Line{first, second},
		References: []*model.Reference{ref},
		Throughputs: []*model.Throughput{
			{LineID: first.ID, ReferenceID: ref.ID, RatePerHour: 10},
			{LineID: second.ID, ReferenceID: ref.ID, RatePerHour: 10},
		},
		Availabilities: append(fullWeekAvailability(first.ID, 8), fullWeekAvailability(second.ID, 8)...),
	}

	m := Build(cfg, testWeek)

	lineID, _ := m.PreferredLine(ref.ID)
	if lineID != first.ID {
		t.Errorf("完全同分时应保持矩阵行序")
	}
}

func TestMatrix_PreferredLine_NoEntries(t *testing.T) {
	m := Build(&model.PlanConfig{}, testWeek)
	if _, ok := m.PreferredLine(uuid.New()); ok {
		t.Error("没有兼容条目时不应有首选产线")
	}
}
