package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/errors"
	"github.com/paichan/paichan/pkg/model"
	"github.com/paichan/paichan/pkg/stats"
)

// StatsRequest 统计分析请求
// 与验证请求一样携带完整快照和排产块，统计是无状态计算
type StatsRequest struct {
	Week           WeekInput           `json:"week"`
	Lines          []LineInput         `json:"lines"`
	References     []ReferenceInput    `json:"references"`
	Throughputs    []ThroughputInput   `json:"throughputs"`
	Availabilities []AvailabilityInput `json:"availabilities"`
	Demands        []DemandInput       `json:"demands,omitempty"`
	Items          []ItemInput         `json:"items"`
}

// GetUtilizationHandler 产线利用率分析
func GetUtilizationHandler(w http.ResponseWriter, r *http.Request) {
	cfg, week, items, ok := parseStatsRequest(w, r)
	if !ok {
		return
	}

	analyzer := stats.NewUtilizationAnalyzer()
	metrics := analyzer.Analyze(cfg, week, items)

	respondJSON(w, http.StatusOK, metrics)
}

// GetFulfillmentHandler 需求满足度分析
func GetFulfillmentHandler(w http.ResponseWriter, r *http.Request) {
	cfg, _, items, ok := parseStatsRequest(w, r)
	if !ok {
		return
	}

	metrics := stats.AnalyzeFulfillment(cfg, items)

	respondJSON(w, http.StatusOK, metrics)
}

// parseStatsRequest 解析并装配统计请求
func parseStatsRequest(w http.ResponseWriter, r *http.Request) (*model.PlanConfig, model.PlanWeek, []*model.PlanItem, bool) {
	var week model.PlanWeek

	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return nil, week, nil, false
	}

	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return nil, week, nil, false
	}

	week = model.PlanWeek{Year: req.Week.Year, Week: req.Week.Week}
	if !week.Valid() {
		respondError(w, errors.InvalidPlanWeek(req.Week.Year, req.Week.Week))
		return nil, week, nil, false
	}

	genReq := &GenerateRequest{
		Week:           req.Week,
		Lines:          req.Lines,
		References:     req.References,
		Throughputs:    req.Throughputs,
		Availabilities: req.Availabilities,
		Demands:        req.Demands,
	}
	cfg, appErr := buildPlanConfig(genReq)
	if appErr != nil {
		respondError(w, appErr)
		return nil, week, nil, false
	}

	items := make([]*model.PlanItem, 0, len(req.Items))
	for i, in := range req.Items {
		lineID, err := uuid.Parse(in.LineID)
		if err != nil {
			respondError(w, errors.InvalidInput(fmt.Sprintf("items[%d].line_id", i), "无效的UUID格式"))
			return nil, week, nil, false
		}
		refID, err := uuid.Parse(in.ReferenceID)
		if err != nil {
			respondError(w, errors.InvalidInput(fmt.Sprintf("items[%d].reference_id", i), "无效的UUID格式"))
			return nil, week, nil, false
		}
		items = append(items, &model.PlanItem{
			ID:          uuid.New(),
			LineID:      lineID,
			ReferenceID: refID,
			Date:        in.Date,
			StartHour:   in.StartHour,
			EndHour:     in.EndHour,
			Duration:    in.Duration,
			Quantity:    in.Quantity,
			IsSetup:     in.IsSetup,
		})
	}

	return cfg, week, items, true
}
