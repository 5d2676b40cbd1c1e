// Package selector 提供三级优先的选线策略
package selector

import (
	"sort"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/planner/calendar"
	"github.com/paichan/paichan/pkg/planner/compat"
)

// Config 选线配置
type Config struct {
	// StickinessThreshold 粘性阈值：已在产的产线剩余可达产量
	// 达到剩余需求量的该比例时继续用原线，避免为边际产量收益换线
	StickinessThreshold float64 `json:"stickiness_threshold"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{StickinessThreshold: 0.5}
}

// Selector 选线器
// 三级优先策略：粘性 → 首选产线 → 排序兜底
// 对排程状态只读，不做任何修改
type Selector struct {
	cfg Config
}

// New 创建选线器
func New(cfg Config) *Selector {
	if cfg.StickinessThreshold <= 0 {
		cfg.StickinessThreshold = DefaultConfig().StickinessThreshold
	}
	return &Selector{cfg: cfg}
}

// Select 为需求的剩余数量挑选一条产线，首个命中的规则生效：
//  1. 粘性：该参考已有生产块的产线，游标未过截止且剩余可达产量
//     ≥ 阈值 × 剩余需求量时继续使用
//  2. 首选产线：分析器给出的首选产线在截止前还有任何正剩余容量
//  3. 兜底排序：所有兼容且截止前有正剩余容量的产线，
//     按产量降序 → 所需换型时间升序 → 剩余容量降序排序后取首位
//
// excluded 中的产线（本需求已尝试失败）一律跳过；无可选产线返回 false
func (s *Selector) Select(
	ctx *calendar.Context,
	matrix *compat.Matrix,
	preferred map[uuid.UUID]uuid.UUID,
	referenceID uuid.UUID,
	remaining float64,
	deadlineIdx int,
	excluded map[uuid.UUID]bool,
) (uuid.UUID, bool) {
	if deadlineIdx < 0 {
		return uuid.Nil, false
	}

	// 规则 1：粘性
	if lineID, ok := s.stickyLine(ctx, referenceID, remaining, deadlineIdx, excluded); ok {
		return lineID, true
	}

	// 规则 2：首选产线
	if lineID, ok := preferred[referenceID]; ok && !excluded[lineID] {
		if ctx.RemainingHours(lineID, deadlineIdx) > calendar.Epsilon {
			return lineID, true
		}
	}

	// 规则 3：兜底排序
	return s.rankedFallback(ctx, matrix, referenceID, deadlineIdx, excluded)
}

// stickyLine 查找可以继续使用的已在产产线
func (s *Selector) stickyLine(ctx *calendar.Context, referenceID uuid.UUID, remaining float64, deadlineIdx int, excluded map[uuid.UUID]bool) (uuid.UUID, bool) {
	items := ctx.ProductionItems(referenceID)
	if len(items) == 0 {
		return uuid.Nil, false
	}

	// 最近一次生产该参考的产线
	lineID := items[len(items)-1].LineID
	if excluded[lineID] {
		return uuid.Nil, false
	}

	ls := ctx.Schedule(lineID)
	if ls == nil || ls.Exhausted(deadlineIdx) {
		return uuid.Nil, false
	}

	achievable := ctx.RemainingCapacityTons(lineID, referenceID, deadlineIdx)
	if achievable+calendar.Epsilon < s.cfg.StickinessThreshold*remaining {
		return uuid.Nil, false
	}
	return lineID, true
}

// rankedFallback 在所有兼容产线中排序选优
func (s *Selector) rankedFallback(ctx *calendar.Context, matrix *compat.Matrix, referenceID uuid.UUID, deadlineIdx int, excluded map[uuid.UUID]bool) (uuid.UUID, bool) {
	type candidate struct {
		lineID        uuid.UUID
		rate          float64
		setupHours    float64
		remainingTons float64
	}

	var candidates []candidate
	for _, entry := range matrix.ForReference(referenceID) {
		if excluded[entry.LineID] {
			continue
		}
		remHours := ctx.RemainingHours(entry.LineID, deadlineIdx)
		if remHours <= calendar.Epsilon {
			continue
		}

		var setupHours float64
		ls := ctx.Schedule(entry.LineID)
		if ls != nil && ls.LastReferenceID != nil && *ls.LastReferenceID != referenceID {
			setupHours = ctx.SetupHours(entry.LineID, *ls.LastReferenceID, referenceID)
		}

		candidates = append(candidates, candidate{
			lineID:        entry.LineID,
			rate:          entry.Rate,
			setupHours:    setupHours,
			remainingTons: entry.Rate * remHours,
		})
	}

	if len(candidates) == 0 {
		return uuid.Nil, false
	}

	// 稳定排序：同分时保持矩阵行序，保证确定性
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.rate != cj.rate {
			return ci.rate > cj.rate
		}
		if ci.setupHours != cj.setupHours {
			return ci.setupHours < cj.setupHours
		}
		return ci.remainingTons > cj.remainingTons
	})

	return candidates[0].lineID, true
}
