// Package model 定义排产引擎的核心数据模型
package model

import (
	"fmt"
	"time"
)

// PlanWeek 排产目标周（ISO 年 + 周数，周一为一周起点）
// 排产周必须由调用方显式指定，引擎内部不读取系统时间
type PlanWeek struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// Valid 检查排产周是否有效
func (w PlanWeek) Valid() bool {
	if w.Week < 1 || w.Week > 53 {
		return false
	}
	year, week := w.Monday().ISOWeek()
	return year == w.Year && week == w.Week
}

// Monday 返回该 ISO 周的周一（UTC 零点）
func (w PlanWeek) Monday() time.Time {
	// 1月4日总是落在 ISO 第一周
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	firstMonday := jan4.AddDate(0, 0, 1-weekday)
	return firstMonday.AddDate(0, 0, (w.Week-1)*7)
}

// Sunday 返回该周的周日
func (w PlanWeek) Sunday() time.Time {
	return w.Monday().AddDate(0, 0, 6)
}

// Dates 返回周一到周日的 7 个日期（YYYY-MM-DD）
func (w PlanWeek) Dates() []string {
	dates := make([]string, 7)
	monday := w.Monday()
	for i := 0; i < 7; i++ {
		dates[i] = monday.AddDate(0, 0, i).Format(DateFormat)
	}
	return dates
}

// Contains 检查日期是否落在该周内
func (w PlanWeek) Contains(date string) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	monday := w.Monday()
	return !t.Before(monday) && t.Before(monday.AddDate(0, 0, 7))
}

// DayIndex 返回日期在该周内的序号（0=周一…6=周日），不在周内返回 -1
func (w PlanWeek) DayIndex(date string) int {
	t, err := ParseDate(date)
	if err != nil {
		return -1
	}
	idx := int(t.Sub(w.Monday()).Hours() / 24)
	if idx < 0 || idx > 6 {
		return -1
	}
	return idx
}

// String 返回周的字符串表示
func (w PlanWeek) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Week)
}
