// Package stats 提供排产计划统计分析功能
package stats

import (
	"sort"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

// UtilizationMetrics 产线利用率指标
type UtilizationMetrics struct {
	// 整体利用率
	TotalAvailableHours  float64 `json:"total_available_hours"`  // 整周总可用小时
	TotalProductionHours float64 `json:"total_production_hours"` // 生产小时
	TotalSetupHours      float64 `json:"total_setup_hours"`      // 换型小时
	TotalIdleHours       float64 `json:"total_idle_hours"`       // 空闲小时
	OverallUtilization   float64 `json:"overall_utilization"`    // 整体利用率 (%)
	SetupRatio           float64 `json:"setup_ratio"`            // 换型占用比 (%)

	// 按产线统计
	LineUtilization []LineUtilization `json:"line_utilization"`

	// 按日期统计
	DailyUtilization map[string]DayUtilization `json:"daily_utilization"`
}

// LineUtilization 单条产线的利用情况
type LineUtilization struct {
	LineID          string  `json:"line_id"`
	LineName        string  `json:"line_name"`
	AvailableHours  float64 `json:"available_hours"`
	ProductionHours float64 `json:"production_hours"`
	SetupHours      float64 `json:"setup_hours"`
	IdleHours       float64 `json:"idle_hours"`
	Utilization     float64 `json:"utilization"` // %
	SetupCount      int     `json:"setup_count"` // 换型次数
	ScheduledTons   float64 `json:"scheduled_tons"`
}

// DayUtilization 单日利用情况
type DayUtilization struct {
	Date            string  `json:"date"`
	AvailableHours  float64 `json:"available_hours"`
	OccupiedHours   float64 `json:"occupied_hours"`
	Utilization     float64 `json:"utilization"` // %
	ActiveLineCount int     `json:"active_line_count"`
}

// UtilizationAnalyzer 利用率分析器
type UtilizationAnalyzer struct{}

// NewUtilizationAnalyzer 创建利用率分析器
func NewUtilizationAnalyzer() *UtilizationAnalyzer {
	return &UtilizationAnalyzer{}
}

// Analyze 分析一份排产计划的产线利用率
func (a *UtilizationAnalyzer) Analyze(cfg *model.PlanConfig, week model.PlanWeek, items []*model.PlanItem) *UtilizationMetrics {
	metrics := &UtilizationMetrics{
		LineUtilization:  make([]LineUtilization, 0, len(cfg.Lines)),
		DailyUtilization: make(map[string]DayUtilization),
	}

	// 每条产线的整周可用小时
	availByLine := make(map[uuid.UUID]float64)
	availByDay := make(map[int]float64)
	for _, av := range cfg.Availabilities {
		if av.DayOfWeek < 0 || av.DayOfWeek > 6 {
			continue
		}
		availByLine[av.LineID] += av.Hours
		availByDay[av.DayOfWeek] += av.Hours
	}

	type lineAgg struct {
		production float64
		setup      float64
		setupCount int
		tons       float64
	}
	aggByLine := make(map[uuid.UUID]*lineAgg)

	type dayAgg struct {
		occupied float64
		lines    map[uuid.UUID]bool
	}
	aggByDate := make(map[string]*dayAgg)

	for _, item := range items {
		la := aggByLine[item.LineID]
		if la == nil {
			la = &lineAgg{}
			aggByLine[item.LineID] = la
		}
		if item.IsSetup {
			la.setup += item.Duration
			la.setupCount++
			metrics.TotalSetupHours += item.Duration
		} else {
			la.production += item.Duration
			la.tons += item.Quantity
			metrics.TotalProductionHours += item.Duration
		}

		da := aggByDate[item.Date]
		if da == nil {
			da = &dayAgg{lines: make(map[uuid.UUID]bool)}
			aggByDate[item.Date] = da
		}
		da.occupied += item.Duration
		if item.Duration > 0 {
			da.lines[item.LineID] = true
		}
	}

	// 产线维度，按快照顺序输出
	for _, line := range cfg.Lines {
		avail := availByLine[line.ID]
		metrics.TotalAvailableHours += avail

		lu := LineUtilization{
			LineID:         line.ID.String(),
			LineName:       line.Name,
			AvailableHours: avail,
		}
		if la := aggByLine[line.ID]; la != nil {
			lu.ProductionHours = la.production
			lu.SetupHours = la.setup
			lu.SetupCount = la.setupCount
			lu.ScheduledTons = la.tons
		}
		lu.IdleHours = lu.AvailableHours - lu.ProductionHours - lu.SetupHours
		if lu.IdleHours < 0 {
			lu.IdleHours = 0
		}
		if lu.AvailableHours > 0 {
			lu.Utilization = (lu.ProductionHours + lu.SetupHours) / lu.AvailableHours * 100
		}
		metrics.LineUtilization = append(metrics.LineUtilization, lu)
	}

	// 日期维度
	dates := week.Dates()
	for dayIdx, date := range dates {
		du := DayUtilization{
			Date:           date,
			AvailableHours: availByDay[dayIdx],
		}
		if da := aggByDate[date]; da != nil {
			du.OccupiedHours = da.occupied
			du.ActiveLineCount = len(da.lines)
		}
		if du.AvailableHours > 0 {
			du.Utilization = du.OccupiedHours / du.AvailableHours * 100
		}
		metrics.DailyUtilization[date] = du
	}

	metrics.TotalIdleHours = metrics.TotalAvailableHours - metrics.TotalProductionHours - metrics.TotalSetupHours
	if metrics.TotalIdleHours < 0 {
		metrics.TotalIdleHours = 0
	}
	if metrics.TotalAvailableHours > 0 {
		metrics.OverallUtilization = (metrics.TotalProductionHours + metrics.TotalSetupHours) / metrics.TotalAvailableHours * 100
	}
	occupied := metrics.TotalProductionHours + metrics.TotalSetupHours
	if occupied > 0 {
		metrics.SetupRatio = metrics.TotalSetupHours / occupied * 100
	}

	return metrics
}

// TopIdleLines 返回空闲小时最多的前 n 条产线
func (m *UtilizationMetrics) TopIdleLines(n int) []LineUtilization {
	sorted := make([]LineUtilization, len(m.LineUtilization))
	copy(sorted, m.LineUtilization)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].IdleHours > sorted[j].IdleHours
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
