// Package model 定义排产引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Demand 需求：某参考的待排产数量与可选的截止日期
// 需求在一次排产运行中不可变，剩余量由引擎单独跟踪
type Demand struct {
	BaseModel
	OrgID       uuid.UUID `json:"org_id" db:"org_id"`
	ReferenceID uuid.UUID `json:"reference_id" db:"reference_id"`
	Quantity    float64   `json:"quantity" db:"quantity"` // 吨，> 0
	Deadline    *string   `json:"deadline,omitempty" db:"deadline"`
}

// HasDeadline 检查需求是否有截止日期
func (d *Demand) HasDeadline() bool {
	return d.Deadline != nil && *d.Deadline != ""
}

// DeadlineOr 返回截止日期，没有则返回 fallback
func (d *Demand) DeadlineOr(fallback string) string {
	if d.HasDeadline() {
		return *d.Deadline
	}
	return fallback
}

// PlanConfig 排产配置快照：一次排产运行的全部输入
// 引擎只读，不得修改其中任何切片
type PlanConfig struct {
	Lines          []*Line         `json:"lines"`
	References     []*Reference    `json:"references"`
	Throughputs    []*Throughput   `json:"throughputs"`
	Availabilities []*Availability `json:"availabilities"`
	SetupTimes     []*SetupTime    `json:"setup_times"`
	Demands        []*Demand       `json:"demands"`
}
