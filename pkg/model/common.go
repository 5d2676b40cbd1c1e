// Package model 定义排产引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// DateFormat 日期格式 YYYY-MM-DD
const DateFormat = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD 日期
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateFormat, date)
}

// WeekdayIndex 返回日期的周内序号（0=周一…6=周日）
func WeekdayIndex(date string) int {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return 0
	}
	wd := int(t.Weekday())
	if wd == 0 {
		return 6 // time.Sunday
	}
	return wd - 1
}
