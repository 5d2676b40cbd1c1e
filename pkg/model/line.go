// Package model 定义排产引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Line 产线
type Line struct {
	BaseModel
	OrgID    uuid.UUID `json:"org_id" db:"org_id"`
	Name     string    `json:"name" db:"name"`
	Code     string    `json:"code" db:"code"`
	IsActive bool      `json:"is_active" db:"is_active"`
}

// Reference 产品参考（物料/规格）
type Reference struct {
	BaseModel
	OrgID    uuid.UUID `json:"org_id" db:"org_id"`
	Name     string    `json:"name" db:"name"`
	Code     string    `json:"code" db:"code"`
	IsActive bool      `json:"is_active" db:"is_active"`
}

// Throughput 产能配置：产线生产某参考的小时产量
// 每个 (产线, 参考) 至多一条；缺失表示该产线不能生产该参考
type Throughput struct {
	BaseModel
	LineID      uuid.UUID `json:"line_id" db:"line_id"`
	ReferenceID uuid.UUID `json:"reference_id" db:"reference_id"`
	RatePerHour float64   `json:"rate_per_hour" db:"rate_per_hour"` // 吨/小时，> 0
}

// Availability 产线可用性：产线在某个周内日的可用小时数
// 每个 (产线, 周内日) 至多一条；缺失表示当天 0 小时
type Availability struct {
	BaseModel
	LineID    uuid.UUID `json:"line_id" db:"line_id"`
	DayOfWeek int       `json:"day_of_week" db:"day_of_week"` // 0=周一…6=周日
	Hours     float64   `json:"hours" db:"hours"`             // 0..24
}

// SetupTime 换型时间：产线从生产一个参考切换到另一个参考的耗时
// 缺失条目默认为 0 小时
type SetupTime struct {
	BaseModel
	LineID          uuid.UUID `json:"line_id" db:"line_id"`
	FromReferenceID uuid.UUID `json:"from_reference_id" db:"from_reference_id"`
	ToReferenceID   uuid.UUID `json:"to_reference_id" db:"to_reference_id"`
	Hours           float64   `json:"hours" db:"hours"` // ≥ 0
}
