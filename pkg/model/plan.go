// Package model 定义排产引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// PlanItem 排产块：某产线某天的一段生产或换型时间
// 仅由排产运行追加产生；换型块数量为 0
type PlanItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RunID       uuid.UUID `json:"run_id,omitempty" db:"run_id"`
	LineID      uuid.UUID `json:"line_id" db:"line_id"`
	ReferenceID uuid.UUID `json:"reference_id" db:"reference_id"`
	Date        string    `json:"date" db:"date"`             // YYYY-MM-DD
	StartHour   float64   `json:"start_hour" db:"start_hour"` // 当日小时偏移
	EndHour     float64   `json:"end_hour" db:"end_hour"`
	Duration    float64   `json:"duration" db:"duration"` // 小时
	Quantity    float64   `json:"quantity" db:"quantity"` // 吨
	IsSetup     bool      `json:"is_setup" db:"is_setup"`
}

// PlanRun 排产运行：一次运行产生的完整计划与诊断
type PlanRun struct {
	BaseModel
	OrgID    uuid.UUID     `json:"org_id" db:"org_id"`
	Week     PlanWeek      `json:"week" db:"-"`
	Status   string        `json:"status" db:"status"` // completed/failed
	Items    []*PlanItem   `json:"items,omitempty" db:"-"`
	Errors   []string      `json:"errors,omitempty" db:"-"`
	Warnings []string      `json:"warnings,omitempty" db:"-"`
	Duration time.Duration `json:"duration" db:"-"`
}

// WorkingHours 返回排产块时长（小时）
func (p *PlanItem) WorkingHours() float64 {
	return p.Duration
}

// IsOnDate 检查排产块是否在指定日期
func (p *PlanItem) IsOnDate(date string) bool {
	return p.Date == date
}

// Overlaps 检查同一产线同一天的两个排产块是否时间重叠
func (p *PlanItem) Overlaps(other *PlanItem) bool {
	if p.LineID != other.LineID || p.Date != other.Date {
		return false
	}
	return p.StartHour < other.EndHour && other.StartHour < p.EndHour
}
