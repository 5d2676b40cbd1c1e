// Package scenario 提供场景测试
package scenario

import (
	"testing"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
	"github.com/paichan/paichan/pkg/planner"
	"github.com/paichan/paichan/pkg/stats"
	"github.com/paichan/paichan/pkg/validator"
)

var planWeek = model.PlanWeek{Year: 2025, Week: 10} // 2025-03-03 ~ 2025-03-09

// factoryBuilder 工厂配置构建器
type factoryBuilder struct {
	cfg   *model.PlanConfig
	lines map[string]*model.Line
	refs  map[string]*model.Reference
}

func newFactory() *factoryBuilder {
	return &factoryBuilder{
		cfg:   &model.PlanConfig{},
		lines: make(map[string]*model.Line),
		refs:  make(map[string]*model.Reference),
	}
}

func (b *factoryBuilder) line(name string, weekdayHours, weekendHours float64) *factoryBuilder {
	line := &model.Line{BaseModel: model.BaseModel{ID: uuid.New()}, Name: name, IsActive: true}
	b.cfg.Lines = append(b.cfg.Lines, line)
	b.lines[name] = line
	for day := 0; day < 7; day++ {
		hours := weekdayHours
		if day >= 5 {
			hours = weekendHours
		}
		b.cfg.Availabilities = append(b.cfg.Availabilities, &model.Availability{
			LineID: line.ID, DayOfWeek: day, Hours: hours,
		})
	}
	return b
}

func (b *factoryBuilder) reference(name string) *factoryBuilder {
	ref := &model.Reference{BaseModel: model.BaseModel{ID: uuid.New()}, Name: name, IsActive: true}
	b.cfg.References = append(b.cfg.References, ref)
	b.refs[name] = ref
	return b
}

func (b *factoryBuilder) throughput(lineName, refName string, rate float64) *factoryBuilder {
	b.cfg.Throughputs = append(b.cfg.Throughputs, &model.Throughput{
		LineID:      b.lines[lineName].ID,
		ReferenceID: b.refs[refName].ID,
		RatePerHour: rate,
	})
	return b
}

func (b *factoryBuilder) setup(lineName, fromRef, toRef string, hours float64) *factoryBuilder {
	b.cfg.SetupTimes = append(b.cfg.SetupTimes, &model.SetupTime{
		LineID:          b.lines[lineName].ID,
		FromReferenceID: b.refs[fromRef].ID,
		ToReferenceID:   b.refs[toRef].ID,
		Hours:           hours,
	})
	return b
}

func (b *factoryBuilder) demand(refName string, quantity float64, deadline string) *factoryBuilder {
	d := &model.Demand{
		BaseModel:   model.BaseModel{ID: uuid.New()},
		ReferenceID: b.refs[refName].ID,
		Quantity:    quantity,
	}
	if deadline != "" {
		d.Deadline = &deadline
	}
	b.cfg.Demands = append(b.cfg.Demands, d)
	return b
}

// TestSteelPlantWeek 钢厂典型生产周：三线四参考，混合截止日期
func TestSteelPlantWeek(t *testing.T) {
	b := newFactory().
		line("热轧1线", 16, 8).
		line("热轧2线", 16, 8).
		line("冷轧线", 24, 12).
		reference("板材A").
		reference("板材B").
		reference("卷材C").
		reference("卷材D").
		throughput("热轧1线", "板材A", 12).
		throughput("热轧1线", "板材B", 10).
		throughput("热轧2线", "板材A", 10).
		throughput("热轧2线", "卷材C", 14).
		throughput("冷轧线", "卷材C", 8).
		throughput("冷轧线", "卷材D", 9).
		setup("热轧1线", "板材A", "板材B", 2).
		setup("热轧1线", "板材B", "板材A", 2).
		setup("热轧2线", "板材A", "卷材C", 3).
		setup("热轧2线", "卷材C", "板材A", 3).
		setup("冷轧线", "卷材C", "卷材D", 1.5).
		setup("冷轧线", "卷材D", "卷材C", 1.5).
		demand("板材B", 300, "2025-03-05").
		demand("板材A", 600, "2025-03-07").
		demand("卷材C", 400, "").
		demand("卷材D", 350, "")

	result := planner.New(planner.Options{}).Plan(b.cfg, planWeek)

	if len(result.Errors) != 0 {
		t.Fatalf("排产不应有错误: %v", result.Errors)
	}
	t.Logf("排产块数: %d（含换型 %d）", result.Statistics.TotalItems, result.Statistics.SetupItems)
	t.Logf("满足率: %.1f%%  利用率: %.1f%%", result.Statistics.FulfillmentRate, result.Statistics.UtilizationRate)

	// 计划必须通过全部不变式验证
	violations := validator.NewPlanValidator(nil).Validate(b.cfg, planWeek, result.Items)
	if validator.HasErrors(violations) {
		t.Fatalf("生成的计划不应违反不变式: %v", violations)
	}

	// 有截止日期的需求必须在截止日期前排完
	fm := stats.AnalyzeFulfillment(b.cfg, result.Items)
	for _, ds := range fm.DemandStats {
		t.Logf("参考 %s: 需求 %.0f吨 排产 %.0f吨 状态 %s", ds.ReferenceName, ds.DemandTons, ds.ScheduledTons, ds.Status)
	}
	if fm.FulfilledDemands != 4 {
		t.Errorf("满足需求数 = %d, expected 4", fm.FulfilledDemands)
	}
}

// TestBottleneckWeek 产能瓶颈周：需求远超产能，部分满足但计划依然合规
func TestBottleneckWeek(t *testing.T) {
	b := newFactory().
		line("唯一产线", 8, 0). // 周末停产，周容量 8×5×10 = 400 吨
		reference("参考A").
		reference("参考B").
		throughput("唯一产线", "参考A", 10).
		throughput("唯一产线", "参考B", 10).
		setup("唯一产线", "参考A", "参考B", 2).
		setup("唯一产线", "参考B", "参考A", 2).
		demand("参考A", 200, "2025-03-05").
		demand("参考B", 400, "")

	result := planner.New(planner.Options{}).Plan(b.cfg, planWeek)

	if len(result.Errors) != 0 {
		t.Fatalf("两个需求都该排上一部分: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("产能不足时应有部分排产警告")
	}

	violations := validator.NewPlanValidator(nil).Validate(b.cfg, planWeek, result.Items)
	if validator.HasErrors(violations) {
		t.Fatalf("瓶颈周的计划也必须合规: %v", violations)
	}

	// 产能用满：利用率分析的空闲小时应接近 0
	um := stats.NewUtilizationAnalyzer().Analyze(b.cfg, planWeek, result.Items)
	t.Logf("整体利用率: %.1f%%  换型占用: %.1f%%", um.OverallUtilization, um.SetupRatio)
	if um.OverallUtilization < 95 {
		t.Errorf("瓶颈周利用率 = %.1f%%, expected >= 95%%", um.OverallUtilization)
	}

	// 有截止日期的参考A应优先排产且完全满足
	fm := stats.AnalyzeFulfillment(b.cfg, result.Items)
	if fm.DemandStats[0].Status != stats.StatusFulfilled {
		t.Errorf("有截止日期的需求应优先满足, got %s", fm.DemandStats[0].Status)
	}
}

// TestSpecializedLines 专线专产：每个参考只有一条兼容产线
func TestSpecializedLines(t *testing.T) {
	b := newFactory().
		line("专线A", 12, 12).
		line("专线B", 12, 12).
		reference("参考A").
		reference("参考B").
		throughput("专线A", "参考A", 10).
		throughput("专线B", "参考B", 8).
		setup("专线A", "参考A", "参考A", 0).
		setup("专线B", "参考B", "参考B", 0).
		demand("参考A", 500, "").
		demand("参考B", 400, "")

	result := planner.New(planner.Options{}).Plan(b.cfg, planWeek)

	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("专线容量充足时不应有诊断: errors=%v warnings=%v", result.Errors, result.Warnings)
	}

	// 每个参考的排产块只落在自己的专线上
	lineA, lineB := b.lines["专线A"].ID, b.lines["专线B"].ID
	refA, refB := b.refs["参考A"].ID, b.refs["参考B"].ID
	for _, item := range result.Items {
		if item.ReferenceID == refA && item.LineID != lineA {
			t.Errorf("参考A的块落在了错误的产线")
		}
		if item.ReferenceID == refB && item.LineID != lineB {
			t.Errorf("参考B的块落在了错误的产线")
		}
	}

	violations := validator.NewPlanValidator(nil).Validate(b.cfg, planWeek, result.Items)
	if validator.HasErrors(violations) {
		t.Fatalf("计划应合规: %v", violations)
	}
}
