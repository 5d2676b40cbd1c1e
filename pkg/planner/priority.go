// Package planner 提供周度排产计划引擎
package planner

import (
	"sort"

	"github.com/paichan/paichan/pkg/model"
)

// SortDemands 对需求队列做确定性稳定排序：
// 有截止日期的需求排在没有的之前；有截止日期的按日期升序；
// 每组内最后按数量降序（大批量先排，减少换型次数）
// 返回新切片，不修改输入
func SortDemands(demands []*model.Demand) []*model.Demand {
	sorted := make([]*model.Demand, len(demands))
	copy(sorted, demands)

	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i], sorted[j]
		if di.HasDeadline() != dj.HasDeadline() {
			return di.HasDeadline()
		}
		if di.HasDeadline() && dj.HasDeadline() && *di.Deadline != *dj.Deadline {
			return *di.Deadline < *dj.Deadline
		}
		return di.Quantity > dj.Quantity
	})

	return sorted
}
