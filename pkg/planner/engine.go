// Package planner 提供周度排产计划引擎
//
// 一次排产运行是 (配置快照, 目标周) 到 (排产块列表, 错误, 警告) 的纯函数：
// 单线程同步计算，不修改输入切片，不读取系统时间决定排产周，
// 相同输入必然产生相同输出
package planner

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/errors"
	"github.com/paichan/paichan/pkg/logger"
	"github.com/paichan/paichan/pkg/model"
	"github.com/paichan/paichan/pkg/planner/calendar"
	"github.com/paichan/paichan/pkg/planner/compat"
	"github.com/paichan/paichan/pkg/planner/selector"
)

// Options 引擎选项
type Options struct {
	// StickinessThreshold 选线粘性阈值，<= 0 时取默认值 0.5
	StickinessThreshold float64 `json:"stickiness_threshold,omitempty"`
}

// Result 排产结果：完整有序的排产块列表加两组有序诊断
type Result struct {
	RunID      uuid.UUID         `json:"run_id"`
	Week       model.PlanWeek    `json:"week"`
	Items      []*model.PlanItem `json:"items"`
	Errors     []string          `json:"errors"`
	Warnings   []string          `json:"warnings"`
	Statistics *Statistics       `json:"statistics"`
	Duration   time.Duration     `json:"duration"`
}

// Statistics 排产统计
type Statistics struct {
	TotalItems       int     `json:"total_items"`
	SetupItems       int     `json:"setup_items"`
	TotalDemands     int     `json:"total_demands"`
	FulfilledDemands int     `json:"fulfilled_demands"`
	PartialDemands   int     `json:"partial_demands"`
	UnmetDemands     int     `json:"unmet_demands"`
	DemandTons       float64 `json:"demand_tons"`
	ScheduledTons    float64 `json:"scheduled_tons"`
	FulfillmentRate  float64 `json:"fulfillment_rate"` // %
	SetupHours       float64 `json:"setup_hours"`
	ProductionHours  float64 `json:"production_hours"`
	UtilizationRate  float64 `json:"utilization_rate"` // %
}

// Engine 排产引擎编排器
type Engine struct {
	opts     Options
	selector *selector.Selector
	log      *logger.PlannerLogger
}

// New 创建排产引擎
func New(opts Options) *Engine {
	selCfg := selector.DefaultConfig()
	if opts.StickinessThreshold > 0 {
		selCfg.StickinessThreshold = opts.StickinessThreshold
	}
	return &Engine{
		opts:     opts,
		selector: selector.New(selCfg),
		log:      logger.NewPlannerLogger(),
	}
}

// Plan 为目标周生成排产计划
// 控制流：分析器构建首选产线映射 → 需求排序 → 逐需求选线+打包 →
// 容量回填 → 汇总诊断与统计。所有失败都是返回值，不用异常驱动控制流
func (e *Engine) Plan(cfg *model.PlanConfig, week model.PlanWeek) *Result {
	start := time.Now()
	result := &Result{
		RunID:      uuid.New(),
		Week:       week,
		Items:      make([]*model.PlanItem, 0),
		Errors:     make([]string, 0),
		Warnings:   make([]string, 0),
		Statistics: &Statistics{},
	}

	if !week.Valid() {
		result.Errors = append(result.Errors, errors.InvalidPlanWeek(week.Year, week.Week).Message)
		result.Duration = time.Since(start)
		return result
	}

	diag := NewDiagnostics()

	// 致命配置缺失：返回空计划和唯一一条错误
	if msg, fatal := diag.FatalConfig(cfg); fatal {
		result.Errors = append(result.Errors, msg)
		result.Duration = time.Since(start)
		return result
	}

	if len(cfg.SetupTimes) == 0 {
		diag.Warnf("未配置换型时间，所有换型默认为 0 小时")
	}

	ctx := calendar.NewContext(cfg, week)
	matrix := compat.Build(cfg, week)
	preferred := matrix.PreferredLines(cfg.References)
	packer := calendar.NewPacker(ctx)

	demands := SortDemands(cfg.Demands)
	e.log.StartPlan(result.RunID.String(), week.String(), len(cfg.Lines), len(demands))

	// 每个需求的已排产量单独跟踪，需求本身不可变
	placed := make(map[uuid.UUID]float64, len(demands))
	for _, d := range demands {
		if d.Quantity <= 0 {
			continue
		}
		placed[d.ID] = e.planDemand(ctx, matrix, preferred, packer, d)
	}

	e.capacityFill(ctx, packer, demands, placed)

	for _, d := range demands {
		if d.Quantity <= 0 {
			continue
		}
		if placed[d.ID]+calendar.Epsilon < d.Quantity {
			e.log.DemandShortfall(ctx.ReferenceName(d.ReferenceID), placed[d.ID], d.Quantity-placed[d.ID])
		}
		diag.ReportDemand(ctx, matrix, d, placed[d.ID])
	}

	sortItems(ctx.Items)
	result.Items = ctx.Items
	result.Errors = append(result.Errors, diag.Errors...)
	result.Warnings = append(result.Warnings, diag.Warnings...)
	result.Statistics = computeStatistics(cfg, demands, ctx, placed)
	result.Duration = time.Since(start)

	e.log.PlanComplete(result.RunID.String(), result.Duration, len(result.Items), len(result.Errors), len(result.Warnings))
	return result
}

// planDemand 为单个需求排产，返回排上的吨数
// 选线 → 换型 → 打包，直到需求满足、产线耗尽或无线可选；
// 已失败的产线进入排除集，不会被重选，保证循环有界
func (e *Engine) planDemand(ctx *calendar.Context, matrix *compat.Matrix, preferred map[uuid.UUID]uuid.UUID, packer *calendar.Packer, d *model.Demand) float64 {
	deadlineIdx := ctx.EffectiveDeadlineIndex(d)
	if deadlineIdx < 0 {
		// 截止日期早于排产周，整周都来不及
		return 0
	}

	remaining := d.Quantity
	excluded := make(map[uuid.UUID]bool)

	for remaining > calendar.Epsilon {
		lineID, ok := e.selector.Select(ctx, matrix, preferred, d.ReferenceID, remaining, deadlineIdx, excluded)
		if !ok {
			break
		}

		ls := ctx.Schedule(lineID)
		rate, hasRate := ctx.Rate(lineID, d.ReferenceID)
		if ls == nil || !hasRate {
			excluded[lineID] = true
			continue
		}

		hours, ok := packer.EnsureSetup(ls, d.ReferenceID, deadlineIdx)
		if !ok {
			// 非零换型块放不进截止日期，中止本次选线尝试换下一条线
			e.log.SetupFitFailed(ctx.LineName(lineID), ctx.ReferenceName(d.ReferenceID), hours)
			excluded[lineID] = true
			continue
		}

		got := packer.Produce(ls, d.ReferenceID, rate, remaining, deadlineIdx)
		remaining -= got
		if got <= calendar.Epsilon {
			// 零进展的产线不再重选
			excluded[lineID] = true
		}
	}

	return d.Quantity - remaining
}

// sortItems 按 (日期, 起始小时) 稳定排序，同一时刻保持产线分组
func sortItems(items []*model.PlanItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].StartHour < items[j].StartHour
	})
}

// computeStatistics 汇总排产统计
func computeStatistics(cfg *model.PlanConfig, demands []*model.Demand, ctx *calendar.Context, placed map[uuid.UUID]float64) *Statistics {
	stats := &Statistics{}

	for _, item := range ctx.Items {
		stats.TotalItems++
		if item.IsSetup {
			stats.SetupItems++
			stats.SetupHours += item.Duration
		} else {
			stats.ProductionHours += item.Duration
		}
	}

	for _, d := range demands {
		if d.Quantity <= 0 {
			continue
		}
		stats.TotalDemands++
		stats.DemandTons += d.Quantity
		got := placed[d.ID]
		stats.ScheduledTons += got
		switch {
		case got+calendar.Epsilon >= d.Quantity:
			stats.FulfilledDemands++
		case got <= calendar.Epsilon:
			stats.UnmetDemands++
		default:
			stats.PartialDemands++
		}
	}

	if stats.DemandTons > 0 {
		stats.FulfillmentRate = stats.ScheduledTons / stats.DemandTons * 100
	}

	var weeklyHours float64
	for _, av := range cfg.Availabilities {
		weeklyHours += av.Hours
	}
	if weeklyHours > 0 {
		stats.UtilizationRate = (stats.SetupHours + stats.ProductionHours) / weeklyHours * 100
	}

	return stats
}
