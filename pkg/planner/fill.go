// Package planner 提供周度排产计划引擎
package planner

import (
	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
	"github.com/paichan/paichan/pkg/planner/calendar"
)

// capacityFill 容量回填：主循环结束后运行一次，
// 把每条产线从当前游标到周日的剩余小时数花在仍有缺口的需求上。
// 回填只看周末边界，不看单个需求的截止日期：利用率优先于准时性，
// 即使截止日期已错过也继续排
func (e *Engine) capacityFill(ctx *calendar.Context, packer *calendar.Packer, demands []*model.Demand, placed map[uuid.UUID]float64) {
	const horizonEnd = 6 // 周日

	for _, lineID := range ctx.LineOrder() {
		ls := ctx.Schedule(lineID)
		if ls == nil {
			continue
		}

		for _, d := range demands {
			if ctx.RemainingHours(lineID, horizonEnd) <= calendar.Epsilon {
				break
			}
			if d.Quantity <= 0 {
				continue
			}
			shortfall := d.Quantity - placed[d.ID]
			if shortfall <= calendar.Epsilon {
				continue
			}
			rate, ok := ctx.Rate(lineID, d.ReferenceID)
			if !ok {
				continue
			}

			hours, ok := packer.EnsureSetup(ls, d.ReferenceID, horizonEnd)
			if !ok {
				// 整周都放不下换型块，这条产线已经满了
				e.log.SetupFitFailed(ctx.LineName(lineID), ctx.ReferenceName(d.ReferenceID), hours)
				break
			}

			got := packer.Produce(ls, d.ReferenceID, rate, shortfall, horizonEnd)
			placed[d.ID] += got
		}
	}
}
