package model

import (
	"testing"
)

func TestNewBaseModel(t *testing.T) {
	base := NewBaseModel()

	if base.ID.String() == "" {
		t.Error("ID should not be empty")
	}
	if base.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
	if base.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should not be zero")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-03")
	if err != nil {
		t.Fatalf("ParseDate 失败: %v", err)
	}
	if d.Year() != 2025 || int(d.Month()) != 3 || d.Day() != 3 {
		t.Errorf("ParseDate 结果不符: %v", d)
	}

	if _, err := ParseDate("03/03/2025"); err == nil {
		t.Error("非法格式应返回错误")
	}
}

func TestWeekdayIndex(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected int
	}{
		{name: "周一", date: "2025-03-03", expected: 0},
		{name: "周五", date: "2025-03-07", expected: 4},
		{name: "周日映射到6", date: "2025-03-09", expected: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekdayIndex(tt.date); got != tt.expected {
				t.Errorf("WeekdayIndex(%s) = %d, expected %d", tt.date, got, tt.expected)
			}
		})
	}
}

func TestDemand_HasDeadline(t *testing.T) {
	deadline := "2025-03-05"
	empty := ""

	tests := []struct {
		name     string
		demand   Demand
		expected bool
	}{
		{name: "有截止日期", demand: Demand{Deadline: &deadline}, expected: true},
		{name: "空字符串不算截止日期", demand: Demand{Deadline: &empty}, expected: false},
		{name: "无截止日期", demand: Demand{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.demand.HasDeadline(); got != tt.expected {
				t.Errorf("HasDeadline() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPlanItem_Overlaps(t *testing.T) {
	lineID := NewBaseModel().ID
	a := &PlanItem{LineID: lineID, Date: "2025-03-03", StartHour: 0, EndHour: 4}
	b := &PlanItem{LineID: lineID, Date: "2025-03-03", StartHour: 4, EndHour: 8}
	c := &PlanItem{LineID: lineID, Date: "2025-03-03", StartHour: 3, EndHour: 5}
	d := &PlanItem{LineID: lineID, Date: "2025-03-04", StartHour: 0, EndHour: 4}

	if a.Overlaps(b) {
		t.Error("背靠背的块不应重叠")
	}
	if !a.Overlaps(c) {
		t.Error("交叉的块应重叠")
	}
	if a.Overlaps(d) {
		t.Error("不同日期的块不应重叠")
	}
}
