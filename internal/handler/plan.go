// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/paichan/paichan/internal/metrics"
	"github.com/paichan/paichan/pkg/errors"
	"github.com/paichan/paichan/pkg/model"
	"github.com/paichan/paichan/pkg/planner"
	"github.com/paichan/paichan/pkg/validator"
)

// PlanHandler 排产处理器
type PlanHandler struct{}

// NewPlanHandler 创建排产处理器
func NewPlanHandler() *PlanHandler {
	return &PlanHandler{}
}

// WeekInput 排产周输入
type WeekInput struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// LineInput 产线输入
type LineInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// ReferenceInput 参考输入
type ReferenceInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// ThroughputInput 产能输入
type ThroughputInput struct {
	LineID      string  `json:"line_id"`
	ReferenceID string  `json:"reference_id"`
	RatePerHour float64 `json:"rate_per_hour"`
}

// AvailabilityInput 可用性输入
type AvailabilityInput struct {
	LineID    string  `json:"line_id"`
	DayOfWeek int     `json:"day_of_week"` // 0=周一…6=周日
	Hours     float64 `json:"hours"`
}

// SetupTimeInput 换型时间输入
type SetupTimeInput struct {
	LineID          string  `json:"line_id"`
	FromReferenceID string  `json:"from_reference_id"`
	ToReferenceID   string  `json:"to_reference_id"`
	Hours           float64 `json:"hours"`
}

// DemandInput 需求输入
type DemandInput struct {
	ID          string  `json:"id,omitempty"`
	ReferenceID string  `json:"reference_id"`
	Quantity    float64 `json:"quantity"`
	Deadline    string  `json:"deadline,omitempty"` // YYYY-MM-DD
}

// GenerateOptions 生成选项
type GenerateOptions struct {
	StickinessThreshold float64 `json:"stickiness_threshold,omitempty"`
}

// GenerateRequest 排产生成请求
type GenerateRequest struct {
	OrgID          string              `json:"org_id"`
	Week           WeekInput           `json:"week"`
	Lines          []LineInput         `json:"lines"`
	References     []ReferenceInput    `json:"references"`
	Throughputs    []ThroughputInput   `json:"throughputs"`
	Availabilities []AvailabilityInput `json:"availabilities"`
	SetupTimes     []SetupTimeInput    `json:"setup_times,omitempty"`
	Demands        []DemandInput       `json:"demands"`
	Options        *GenerateOptions    `json:"options,omitempty"`
}

// ItemOutput 排产块输出
type ItemOutput struct {
	ID          string  `json:"id"`
	LineID      string  `json:"line_id"`
	ReferenceID string  `json:"reference_id"`
	Date        string  `json:"date"`
	StartHour   float64 `json:"start_hour"`
	EndHour     float64 `json:"end_hour"`
	Duration    float64 `json:"duration"`
	Quantity    float64 `json:"quantity"`
	IsSetup     bool    `json:"is_setup"`
}

// GenerateResponse 排产生成响应
type GenerateResponse struct {
	Success    bool                `json:"success"`
	RunID      string              `json:"run_id"`
	Week       string              `json:"week"`
	Items      []ItemOutput        `json:"items"`
	Errors     []string            `json:"errors,omitempty"`
	Warnings   []string            `json:"warnings,omitempty"`
	Statistics *planner.Statistics `json:"statistics"`
	Duration   string              `json:"duration"`
}

// Generate 生成排产计划
func (h *PlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if appErr := validateGenerateRequest(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	cfg, appErr := buildPlanConfig(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	week := model.PlanWeek{Year: req.Week.Year, Week: req.Week.Week}

	opts := planner.Options{}
	if req.Options != nil {
		opts.StickinessThreshold = req.Options.StickinessThreshold
	}

	engine := planner.New(opts)
	result := engine.Plan(cfg, week)

	success := len(result.Errors) == 0
	metrics.RecordPlanGeneration(week.String(), success, result.Duration)
	metrics.RecordPlanItems(week.String(), result.Statistics.TotalItems-result.Statistics.SetupItems, result.Statistics.SetupItems)
	metrics.SetFulfillmentRate(week.String(), result.Statistics.FulfillmentRate)
	metrics.SetUtilizationRate(week.String(), result.Statistics.UtilizationRate)
	metrics.SetSetupHours(week.String(), result.Statistics.SetupHours)
	metrics.SetUnmetTons(week.String(), result.Statistics.DemandTons-result.Statistics.ScheduledTons)

	resp := GenerateResponse{
		Success:    success,
		RunID:      result.RunID.String(),
		Week:       week.String(),
		Items:      convertItems(result.Items),
		Errors:     result.Errors,
		Warnings:   result.Warnings,
		Statistics: result.Statistics,
		Duration:   result.Duration.String(),
	}

	respondJSON(w, http.StatusOK, resp)
}

// validateGenerateRequest 验证请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.Week.Year == 0 {
		ve.Add("week.year", "排产年份不能为空")
	}
	if req.Week.Week < 1 || req.Week.Week > 53 {
		ve.Add("week.week", "周序号应在 1-53 之间")
	}
	if len(req.Lines) == 0 {
		ve.Add("lines", "产线列表不能为空")
	}
	if len(req.References) == 0 {
		ve.Add("references", "参考列表不能为空")
	}
	if len(req.Demands) == 0 {
		ve.Add("demands", "需求列表不能为空")
	}

	for i, d := range req.Demands {
		if d.Quantity <= 0 {
			ve.Add(fmt.Sprintf("demands[%d].quantity", i), "需求数量应大于 0")
		}
		if d.Deadline != "" {
			if _, err := model.ParseDate(d.Deadline); err != nil {
				ve.Add(fmt.Sprintf("demands[%d].deadline", i), "日期格式无效，应为YYYY-MM-DD")
			}
		}
	}

	for i, av := range req.Availabilities {
		if av.DayOfWeek < 0 || av.DayOfWeek > 6 {
			ve.Add(fmt.Sprintf("availabilities[%d].day_of_week", i), "周内日应在 0-6 之间")
		}
		if av.Hours < 0 || av.Hours > 24 {
			ve.Add(fmt.Sprintf("availabilities[%d].hours", i), "可用小时应在 0-24 之间")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// buildPlanConfig 将请求装配为配置快照，保持输入顺序
func buildPlanConfig(req *GenerateRequest) (*model.PlanConfig, *errors.AppError) {
	cfg := &model.PlanConfig{}

	parseID := func(field, raw string) (uuid.UUID, *errors.AppError) {
		if raw == "" {
			return uuid.New(), nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, errors.InvalidInput(field, "无效的UUID格式")
		}
		return id, nil
	}

	for i, l := range req.Lines {
		id, appErr := parseID(fmt.Sprintf("lines[%d].id", i), l.ID)
		if appErr != nil {
			return nil, appErr
		}
		cfg.Lines = append(cfg.Lines, &model.Line{
			BaseModel: model.BaseModel{ID: id},
			Name:      l.Name,
			Code:      l.Code,
			IsActive:  true,
		})
	}

	for i, ref := range req.References {
		id, appErr := parseID(fmt.Sprintf("references[%d].id", i), ref.ID)
		if appErr != nil {
			return nil, appErr
		}
		cfg.References = append(cfg.References, &model.Reference{
			BaseModel: model.BaseModel{ID: id},
			Name:      ref.Name,
			Code:      ref.Code,
			IsActive:  true,
		})
	}

	for i, tp := range req.Throughputs {
		lineID, appErr := parseID(fmt.Sprintf("throughputs[%d].line_id", i), tp.LineID)
		if appErr != nil {
			return nil, appErr
		}
		refID, appErr := parseID(fmt.Sprintf("throughputs[%d].reference_id", i), tp.ReferenceID)
		if appErr != nil {
			return nil, appErr
		}
		cfg.Throughputs = append(cfg.Throughputs, &model.Throughput{
			LineID:      lineID,
			ReferenceID: refID,
			RatePerHour: tp.RatePerHour,
		})
	}

	for i, av := range req.Availabilities {
		lineID, appErr := parseID(fmt.Sprintf("availabilities[%d].line_id", i), av.LineID)
		if appErr != nil {
			return nil, appErr
		}
		cfg.Availabilities = append(cfg.Availabilities, &model.Availability{
			LineID:    lineID,
			DayOfWeek: av.DayOfWeek,
			Hours:     av.Hours,
		})
	}

	for i, st := range req.SetupTimes {
		lineID, appErr := parseID(fmt.Sprintf("setup_times[%d].line_id", i), st.LineID)
		if appErr != nil {
			return nil, appErr
		}
		fromID, appErr := parseID(fmt.Sprintf("setup_times[%d].from_reference_id", i), st.FromReferenceID)
		if appErr != nil {
			return nil, appErr
		}
		toID, appErr := parseID(fmt.Sprintf("setup_times[%d].to_reference_id", i), st.ToReferenceID)
		if appErr != nil {
			return nil, appErr
		}
		cfg.SetupTimes = append(cfg.SetupTimes, &model.SetupTime{
			LineID:          lineID,
			FromReferenceID: fromID,
			ToReferenceID:   toID,
			Hours:           st.Hours,
		})
	}

	for i, d := range req.Demands {
		id, appErr := parseID(fmt.Sprintf("demands[%d].id", i), d.ID)
		if appErr != nil {
			return nil, appErr
		}
		refID, appErr := parseID(fmt.Sprintf("demands[%d].reference_id", i), d.ReferenceID)
		if appErr != nil {
			return nil, appErr
		}
		demand := &model.Demand{
			BaseModel:   model.BaseModel{ID: id},
			ReferenceID: refID,
			Quantity:    d.Quantity,
		}
		if d.Deadline != "" {
			deadline := d.Deadline
			demand.Deadline = &deadline
		}
		cfg.Demands = append(cfg.Demands, demand)
	}

	return cfg, nil
}

// convertItems 转换排产块输出
func convertItems(items []*model.PlanItem) []ItemOutput {
	out := make([]ItemOutput, 0, len(items))
	for _, item := range items {
		out = append(out, ItemOutput{
			ID:          item.ID.String(),
			LineID:      item.LineID.String(),
			ReferenceID: item.ReferenceID.String(),
			Date:        item.Date,
			StartHour:   item.StartHour,
			EndHour:     item.EndHour,
			Duration:    item.Duration,
			Quantity:    item.Quantity,
			IsSetup:     item.IsSetup,
		})
	}
	return out
}

// ValidateRequest 排产验证请求
type ValidateRequest struct {
	Week           WeekInput           `json:"week"`
	Lines          []LineInput         `json:"lines"`
	References     []ReferenceInput    `json:"references"`
	Throughputs    []ThroughputInput   `json:"throughputs"`
	Availabilities []AvailabilityInput `json:"availabilities"`
	SetupTimes     []SetupTimeInput    `json:"setup_times,omitempty"`
	Demands        []DemandInput       `json:"demands"`
	Items          []ItemInput         `json:"items"`
}

// ItemInput 排产块输入
type ItemInput struct {
	ID          string  `json:"id,omitempty"`
	LineID      string  `json:"line_id"`
	ReferenceID string  `json:"reference_id"`
	Date        string  `json:"date"`
	StartHour   float64 `json:"start_hour"`
	EndHour     float64 `json:"end_hour"`
	Duration    float64 `json:"duration"`
	Quantity    float64 `json:"quantity"`
	IsSetup     bool    `json:"is_setup"`
}

// ValidateResponse 排产验证响应
type ValidateResponse struct {
	IsValid    bool                  `json:"is_valid"`
	Violations []validator.Violation `json:"violations"`
}

// Validate 验证一份排产计划是否满足全部不变式
func (h *PlanHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	week := model.PlanWeek{Year: req.Week.Year, Week: req.Week.Week}
	if !week.Valid() {
		respondError(w, errors.InvalidPlanWeek(req.Week.Year, req.Week.Week))
		return
	}

	genReq := &GenerateRequest{
		Week:           req.Week,
		Lines:          req.Lines,
		References:     req.References,
		Throughputs:    req.Throughputs,
		Availabilities: req.Availabilities,
		SetupTimes:     req.SetupTimes,
		Demands:        req.Demands,
	}
	cfg, appErr := buildPlanConfig(genReq)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	items := make([]*model.PlanItem, 0, len(req.Items))
	for i, in := range req.Items {
		lineID, err := uuid.Parse(in.LineID)
		if err != nil {
			respondError(w, errors.InvalidInput(fmt.Sprintf("items[%d].line_id", i), "无效的UUID格式"))
			return
		}
		refID, err := uuid.Parse(in.ReferenceID)
		if err != nil {
			respondError(w, errors.InvalidInput(fmt.Sprintf("items[%d].reference_id", i), "无效的UUID格式"))
			return
		}
		id := uuid.New()
		if in.ID != "" {
			parsed, err := uuid.Parse(in.ID)
			if err != nil {
				respondError(w, errors.InvalidInput(fmt.Sprintf("items[%d].id", i), "无效的UUID格式"))
				return
			}
			id = parsed
		}
		items = append(items, &model.PlanItem{
			ID:          id,
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

	v := validator.NewPlanValidator(nil)
	violations := v.Validate(cfg, week, items)

	resp := ValidateResponse{
		IsValid:    !validator.HasErrors(violations),
		Violations: violations,
	}

	respondJSON(w, http.StatusOK, resp)
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
