// Package compat 提供产线与参考的兼容性分析
package compat

import (
	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

// Entry 兼容性矩阵条目：一个可行的 (产线, 参考) 组合
type Entry struct {
	LineID            uuid.UUID `json:"line_id"`
	ReferenceID       uuid.UUID `json:"reference_id"`
	Rate              float64   `json:"rate"`                // 吨/小时
	TotalCapacityTons float64   `json:"total_capacity_tons"` // 整周可达产量
}

type pairKey struct {
	lineID      uuid.UUID
	referenceID uuid.UUID
}

// Matrix 兼容性矩阵
// 只在排产运行开始时构建一次，之后只读
type Matrix struct {
	entries     []*Entry
	byReference map[uuid.UUID][]*Entry
	byPair      map[pairKey]*Entry
}

// Build 构建兼容性矩阵
// 对每个存在产能配置的 (产线, 参考) 组合，计算整个排产周内的可达产量：
// rate × Σ(该产线每天的可用小时数)。纯函数，不修改输入
func Build(cfg *model.PlanConfig, week model.PlanWeek) *Matrix {
	// 每条产线的整周可用小时数
	weeklyHours := make(map[uuid.UUID]float64)
	for _, av := range cfg.Availabilities {
		if av.DayOfWeek < 0 || av.DayOfWeek > 6 {
			continue
		}
		weeklyHours[av.LineID] += av.Hours
	}

	m := &Matrix{
		entries:     make([]*Entry, 0, len(cfg.Throughputs)),
		byReference: make(map[uuid.UUID][]*Entry),
		byPair:      make(map[pairKey]*Entry),
	}

	// 按快照顺序遍历，保证矩阵行序确定
	for _, tp := range cfg.Throughputs {
		if tp.RatePerHour <= 0 {
			continue
		}
		entry := &Entry{
			LineID:            tp.LineID,
			ReferenceID:       tp.ReferenceID,
			Rate:              tp.RatePerHour,
			TotalCapacityTons: tp.RatePerHour * weeklyHours[tp.LineID],
		}
		m.entries = append(m.entries, entry)
		m.byReference[tp.ReferenceID] = append(m.byReference[tp.ReferenceID], entry)
		m.byPair[pairKey{tp.LineID, tp.ReferenceID}] = entry
	}

	return m
}

// ForReference 返回某参考的所有可行产线条目（快照顺序）
func (m *Matrix) ForReference(referenceID uuid.UUID) []*Entry {
	return m.byReference[referenceID]
}

// Rate 返回 (产线, 参考) 的小时产量
func (m *Matrix) Rate(lineID, referenceID uuid.UUID) (float64, bool) {
	entry, ok := m.byPair[pairKey{lineID, referenceID}]
	if !ok {
		return 0, false
	}
	return entry.Rate, true
}

// Compatible 检查产线能否生产某参考
func (m *Matrix) Compatible(lineID, referenceID uuid.UUID) bool {
	_, ok := m.byPair[pairKey{lineID, referenceID}]
	return ok
}

// PreferredLine 识别某参考的首选产线：
// 产量最高者优先，产量相同取整周可达产量更高者，仍相同取矩阵行序在前者
// 结果只作为选线提示，不是硬约束
func (m *Matrix) PreferredLine(referenceID uuid.UUID) (uuid.UUID, bool) {
	entries := m.byReference[referenceID]
	if len(entries) == 0 {
		return uuid.Nil, false
	}

	best := entries[0]
	for _, e := range entries[1:] {
		if e.Rate > best.Rate {
			best = e
			continue
		}
		if e.Rate == best.Rate && e.TotalCapacityTons > best.TotalCapacityTons {
			best = e
		}
	}
	return best.LineID, true
}

// PreferredLines 为每个参考计算首选产线
func (m *Matrix) PreferredLines(references []*model.Reference) map[uuid.UUID]uuid.UUID {
	preferred := make(map[uuid.UUID]uuid.UUID, len(references))
	for _, ref := range references {
		if lineID, ok := m.PreferredLine(ref.ID); ok {
			preferred[ref.ID] = lineID
		}
	}
	return preferred
}
