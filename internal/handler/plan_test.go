package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func fullWeekAvailability(lineID string, hours float64) []AvailabilityInput {
	avs := make([]AvailabilityInput, 0, 7)
	for day := 0; day < 7; day++ {
		avs = append(avs, AvailabilityInput{LineID: lineID, DayOfWeek: day, Hours: hours})
	}
	return avs
}

func validGenerateRequest() *GenerateRequest {
	lineID := uuid.New().String()
	refID := uuid.New().String()

	return &GenerateRequest{
		OrgID:          uuid.New().String(),
		Week:           WeekInput{Year: 2025, Week: 10},
		Lines:          []LineInput{{ID: lineID, Name: "产线1"}},
		References:     []ReferenceInput{{ID: refID, Name: "参考A"}},
		Throughputs:    []ThroughputInput{{LineID: lineID, ReferenceID: refID, RatePerHour: 10}},
		Availabilities: fullWeekAvailability(lineID, 8),
		SetupTimes:     []SetupTimeInput{{LineID: lineID, FromReferenceID: refID, ToReferenceID: refID, Hours: 0}},
		Demands:        []DemandInput{{ReferenceID: refID, Quantity: 400}},
	}
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("序列化请求失败: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handlerFunc(w, req)
	return w
}

func TestGenerate_Success(t *testing.T) {
	h := NewPlanHandler()

	w := postJSON(t, h.Generate, "/api/v1/plan/generate", validGenerateRequest())

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, expected 200: %s", w.Code, w.Body.String())
	}

	var resp GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if !resp.Success {
		t.Errorf("Success = false, errors: %v", resp.Errors)
	}
	if resp.Week != "2025-W10" {
		t.Errorf("Week = %s, expected 2025-W10", resp.Week)
	}
	if resp.Statistics == nil || resp.Statistics.ScheduledTons != 400 {
		t.Errorf("统计不符: %+v", resp.Statistics)
	}
	if len(resp.Items) == 0 {
		t.Error("应返回排产块")
	}
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	h := NewPlanHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plan/generate", nil)
	w := httptest.NewRecorder()
	h.Generate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, expected 400", w.Code)
	}
}

func TestGenerate_InvalidBody(t *testing.T) {
	h := NewPlanHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plan/generate", bytes.NewReader([]byte("不是JSON")))
	w := httptest.NewRecorder()
	h.Generate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, expected 400", w.Code)
	}
}

func TestGenerate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *GenerateRequest)
	}{
		{name: "缺少年份", mutate: func(r *GenerateRequest) { r.Week.Year = 0 }},
		{name: "周序号越界", mutate: func(r *GenerateRequest) { r.Week.Week = 54 }},
		{name: "产线为空", mutate: func(r *GenerateRequest) { r.Lines = nil }},
		{name: "需求为空", mutate: func(r *GenerateRequest) { r.Demands = nil }},
		{name: "需求数量非正", mutate: func(r *GenerateRequest) { r.Demands[0].Quantity = 0 }},
		{name: "截止日期格式错", mutate: func(r *GenerateRequest) { r.Demands[0].Deadline = "05/03/2025" }},
		{name: "可用小时越界", mutate: func(r *GenerateRequest) { r.Availabilities[0].Hours = 25 }},
	}

	h := NewPlanHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validGenerateRequest()
			tt.mutate(req)

			w := postJSON(t, h.Generate, "/api/v1/plan/generate", req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("状态码 = %d, expected 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGenerate_InvalidUUID(t *testing.T) {
	h := NewPlanHandler()
	req := validGenerateRequest()
	req.Lines[0].ID = "不是UUID"

	w := postJSON(t, h.Generate, "/api/v1/plan/generate", req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, expected 400", w.Code)
	}
}

func TestGenerate_EngineDiagnosticsPassThrough(t *testing.T) {
	h := NewPlanHandler()
	req := validGenerateRequest()
	req.Demands[0].Quantity = 600 // 周容量 8×7×10 = 560 吨

	w := postJSON(t, h.Generate, "/api/v1/plan/generate", req)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, expected 200", w.Code)
	}
	var resp GenerateResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	if !resp.Success {
		t.Error("部分排产仍算成功运行")
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("警告数 = %d, expected 1: %v", len(resp.Warnings), resp.Warnings)
	}
}

func TestValidate_ValidPlan(t *testing.T) {
	h := NewPlanHandler()
	gen := validGenerateRequest()

	req := &ValidateRequest{
		Week:           gen.Week,
		Lines:          gen.Lines,
		References:     gen.References,
		Throughputs:    gen.Throughputs,
		Availabilities: gen.Availabilities,
		SetupTimes:     gen.SetupTimes,
		Demands:        gen.Demands,
		Items: []ItemInput{
			{
				LineID:      gen.Lines[0].ID,
				ReferenceID: gen.References[0].ID,
				Date:        "2025-03-03",
				StartHour:   0,
				EndHour:     8,
				Duration:    8,
				Quantity:    80,
			},
		},
	}

	w := postJSON(t, h.Validate, "/api/v1/plan/validate", req)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, expected 200: %s", w.Code, w.Body.String())
	}
	var resp ValidateResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.IsValid {
		t.Errorf("合规计划应通过验证: %v", resp.Violations)
	}
}

func TestValidate_ViolatingPlan(t *testing.T) {
	h := NewPlanHandler()
	gen := validGenerateRequest()

	// 数量与 时长×产量 不符
	req := &ValidateRequest{
		Week:           gen.Week,
		Lines:          gen.Lines,
		References:     gen.References,
		Throughputs:    gen.Throughputs,
		Availabilities: gen.Availabilities,
		Demands:        gen.Demands,
		Items: []ItemInput{
			{
				LineID:      gen.Lines[0].ID,
				ReferenceID: gen.References[0].ID,
				Date:        "2025-03-03",
				StartHour:   0,
				EndHour:     4,
				Duration:    4,
				Quantity:    99,
			},
		},
	}

	w := postJSON(t, h.Validate, "/api/v1/plan/validate", req)

	var resp ValidateResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.IsValid {
		t.Error("违规计划不应通过验证")
	}
	if len(resp.Violations) == 0 {
		t.Error("应返回违规明细")
	}
}

func TestValidate_InvalidWeek(t *testing.T) {
	h := NewPlanHandler()

	req := &ValidateRequest{Week: WeekInput{Year: 2025, Week: 60}}
	w := postJSON(t, h.Validate, "/api/v1/plan/validate", req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, expected 400", w.Code)
	}
}
