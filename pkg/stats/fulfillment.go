// Package stats 提供排产计划统计分析功能
package stats

import (
	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

// FulfillmentStatus 需求满足状态
type FulfillmentStatus string

const (
	StatusFulfilled FulfillmentStatus = "fulfilled" // 完全满足
	StatusPartial   FulfillmentStatus = "partial"   // 部分满足
	StatusUnmet     FulfillmentStatus = "unmet"     // 完全未满足
)

// FulfillmentMetrics 需求满足度指标
type FulfillmentMetrics struct {
	TotalDemands     int     `json:"total_demands"`
	FulfilledDemands int     `json:"fulfilled_demands"`
	PartialDemands   int     `json:"partial_demands"`
	UnmetDemands     int     `json:"unmet_demands"`
	DemandTons       float64 `json:"demand_tons"`
	ScheduledTons    float64 `json:"scheduled_tons"`
	UnmetTons        float64 `json:"unmet_tons"`
	FulfillmentRate  float64 `json:"fulfillment_rate"` // %

	DemandStats []DemandStat `json:"demand_stats"`
}

// DemandStat 单个需求的满足情况
type DemandStat struct {
	ReferenceID   string            `json:"reference_id"`
	ReferenceName string            `json:"reference_name"`
	Deadline      string            `json:"deadline,omitempty"`
	DemandTons    float64           `json:"demand_tons"`
	ScheduledTons float64           `json:"scheduled_tons"`
	UnmetTons     float64           `json:"unmet_tons"`
	Status        FulfillmentStatus `json:"status"`
}

const fulfillmentEpsilon = 1e-6

// AnalyzeFulfillment 分析排产计划对需求的满足度
// 排产块按参考归集到需求上；多个需求共用同一参考时按排序先到先得
func AnalyzeFulfillment(cfg *model.PlanConfig, items []*model.PlanItem) *FulfillmentMetrics {
	metrics := &FulfillmentMetrics{
		DemandStats: make([]DemandStat, 0, len(cfg.Demands)),
	}

	refName := make(map[uuid.UUID]string, len(cfg.References))
	for _, ref := range cfg.References {
		refName[ref.ID] = ref.Name
	}

	// 每个参考的已排产吨数
	scheduledByRef := make(map[uuid.UUID]float64)
	for _, item := range items {
		if item.IsSetup {
			continue
		}
		scheduledByRef[item.ReferenceID] += item.Quantity
	}

	for _, d := range cfg.Demands {
		if d.Quantity <= 0 {
			continue
		}

		available := scheduledByRef[d.ReferenceID]
		got := available
		if got > d.Quantity {
			got = d.Quantity
		}
		scheduledByRef[d.ReferenceID] = available - got

		stat := DemandStat{
			ReferenceID:   d.ReferenceID.String(),
			ReferenceName: refName[d.ReferenceID],
			DemandTons:    d.Quantity,
			ScheduledTons: got,
			UnmetTons:     d.Quantity - got,
		}
		if d.HasDeadline() {
			stat.Deadline = *d.Deadline
		}
		switch {
		case got+fulfillmentEpsilon >= d.Quantity:
			stat.Status = StatusFulfilled
			metrics.FulfilledDemands++
		case got <= fulfillmentEpsilon:
			stat.Status = StatusUnmet
			metrics.UnmetDemands++
		default:
			stat.Status = StatusPartial
			metrics.PartialDemands++
		}

		metrics.TotalDemands++
		metrics.DemandTons += d.Quantity
		metrics.ScheduledTons += got
		metrics.UnmetTons += stat.UnmetTons
		metrics.DemandStats = append(metrics.DemandStats, stat)
	}

	if metrics.DemandTons > 0 {
		metrics.FulfillmentRate = metrics.ScheduledTons / metrics.DemandTons * 100
	}

	return metrics
}
