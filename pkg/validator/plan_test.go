package validator

import (
	"testing"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

var testWeek = model.PlanWeek{Year: 2025, Week: 10} // 2025-03-03 ~ 2025-03-09

// newValidatorConfig 单线双参考、每天 8 小时、产量 10 吨/小时
func newValidatorConfig() (*model.PlanConfig, *model.Line, *model.Reference, *model.Reference) {
	line := &model.Line{BaseModel: model.BaseModel{ID: uuid.New()}, Name: "产线1", IsActive: true}
	refA := &model.Reference{BaseModel: model.BaseModel{ID: uuid.New()}, Name: "参考A", IsActive: true}
	refB := &model.Reference{BaseModel: model.BaseModel{ID: uuid.New()}, Name: "参考B", IsActive: true}

	cfg := &model.PlanConfig{
		Lines:      []*model.Line{line},
		References: []*model.Reference{refA, refB},
		Throughputs: []*model.Throughput{
			{LineID: line.ID, ReferenceID: refA.ID, RatePerHour: 10},
			{LineID: line.ID, ReferenceID: refB.ID, RatePerHour: 10},
		},
		Demands: []*model.Demand{
			{BaseModel: model.BaseModel{ID: uuid.New()}, ReferenceID: refA.ID, Quantity: 500},
			{BaseModel: model.BaseModel{ID: uuid.New()}, ReferenceID: refB.ID, Quantity: 500},
		},
	}
	for day := 0; day < 7; day++ {
		cfg.Availabilities = append(cfg.Availabilities, &model.Availability{
			LineID: line.ID, DayOfWeek: day, Hours: 8,
		})
	}
	return cfg, line, refA, refB
}

func item(lineID, refID uuid.UUID, date string, start, end, quantity float64, isSetup bool) *model.PlanItem {
	return &model.PlanItem{
		ID:          uuid.New(),
		LineID:      lineID,
		ReferenceID: refID,
		Date:        date,
		StartHour:   start,
		EndHour:     end,
		Duration:    end - start,
		Quantity:    quantity,
		IsSetup:     isSetup,
	}
}

func countType(violations []Violation, vt ViolationType) int {
	n := 0
	for _, v := range violations {
		if v.Type == vt {
			n++
		}
	}
	return n
}

func TestValidate_CleanPlan(t *testing.T) {
	cfg, line, refA, refB := newValidatorConfig()

	items := []*model.PlanItem{
		item(line.ID, refA.ID, "2025-03-03", 0, 8, 80, false),
		item(line.ID, refB.ID, "2025-03-04", 0, 2, 0, true),
		item(line.ID, refB.ID, "2025-03-04", 2, 8, 60, false),
	}

	violations := NewPlanValidator(nil).Validate(cfg, testWeek, items)

	if len(violations) != 0 {
		t.Errorf("合规计划不应有违规: %v", violations)
	}
	if HasErrors(violations) {
		t.Error("HasErrors() = true, expected false")
	}
}

func TestValidate_OutOfWeek(t *testing.T) {
	cfg, line, refA, _ := newValidatorConfig()

	items := []*model.PlanItem{
		item(line.ID, refA.ID, "2025-03-10", 0, 4, 40, false), // 下周一
	}

	violations := NewPlanValidator(nil).Validate(cfg, testWeek, items)

	if countType(violations, ViolationOutOfWeek) != 1 {
		t.Errorf("应有 1 条日期越界违规: %v", violations)
	}
}

func TestValidate_Overlap(t *testing.T) {
	cfg, line, refA, _ := newValidatorConfig()

	items := []*model.PlanItem{
		item(line.ID, refA.ID, "2025-03-03", 0, 5, 50, false),
		item(line.ID, refA.ID, "2025-03-03", 4, 8, 40, false), // 与前块交叉 1 小时
	}

	violations := NewPlanValidator(nil).Validate(cfg, testWeek, items)

	if countType(violations, ViolationOverlap) != 1 {
		t.Errorf("应有 1 条重叠违规: %v", violations)
	}
}

func TestValidate_BackToBackIsNotOverlap(t *testing.T) {
	cfg, line, refA, _ := newValidatorConfig()

	items := []*model.PlanItem{
		item(line.ID, refA.ID, "2025-03-03", 0, 4, 40, false),
		item(line.ID, refA.ID, "2025-03-03", 4, 8, 40, false),
	}

	violations := NewPlanValidator(nil).Validate(cfg, testWeek, items)

	if countType(violations, ViolationOverlap) != 0 {
		t.Errorf("背靠背排列不算重叠: %v", violations)
	}
}

func TestValidate_CapacityExceeded(t *testing.T) {
	cfg, line, refA, _ := newValidatorConfig()

	// 周一只有 8 小时可用，排了 10 小时
	items := []*model.PlanItem{
		item(line.ID, refA.ID, "2025-03-03", 0, 6, 60, false),
		item(line.ID, refA.ID, "2025-03-03", 6, 10, 40, false),
	}

	violations := NewPlanValidator(nil).Validate(cfg, testWeek, items)

	if countType(violations, ViolationCapacity) != 1 {
		t.Errorf("应有 1 条容量违规: %v", violations)
	}
}

func TestValidate_RateMismatch(t *testing.T) {
	cfg, line, refA, _ := newValidatorConfig()

	// 4 小时 × 10 吨/小时 应为 40 吨
	items := []*model.PlanItem{
		item(line.ID, refA.ID, "2025-03-03", 0, 4, 55, false),
	}

	violations := NewPlanValidator(nil).Validate(cfg, testWeek, items)

	if countType(violations, ViolationRateMismatch) != 1 {
		t.Errorf("应有 1 条数量不符违规: %v", violations)
	}
}

func TestValidate_SetupWithQuantity(t *testing.T) {
	cfg, line, refA, _ := newValidatorConfig()

	items := []*model.PlanItem{
		item(line.ID, refA.ID, "2025-03-03", 0, 2, 5, true), // 换型块带产量
	}

	violations := NewPlanValidator(nil).Validate(cfg, testWeek, items)

	if countType(violations, ViolationSetupQuantity) != 1 {
		t.Errorf("应有 1 条换型带产量违规: %v", violations)
	}
}

func TestValidate_IncompatibleLine(t *testing.T) {
	cfg, line, _, _ := newValidatorConfig()
	orphan := uuid.New() // 没有产能配置的参考

	items := []*model.PlanItem{
		item(line.ID, orphan, "2025-03-03", 0, 4, 40, false),
	}

	violations := NewPlanValidator(nil).Validate(cfg, testWeek, items)

	if countType(violations, ViolationIncompatible) != 1 {
		t.Errorf("应有 1 条兼容性违规: %v", violations)
	}
}

func TestValidate_OverProduction(t *testing.T) {
	cfg, line, refA, _ := newValidatorConfig()
	cfg.Demands = []*model.Demand{
		{BaseModel: model.BaseModel{ID: uuid.New()}, ReferenceID: refA.ID, Quantity: 30},
	}

	items := []*model.PlanItem{
		item(line.ID, refA.ID, "2025-03-03", 0, 4, 40, false), // 排了 40 吨需求只有 30
	}

	violations := NewPlanValidator(nil).Validate(cfg, testWeek, items)

	if countType(violations, ViolationOverProduction) != 1 {
		t.Errorf("应有 1 条超产违规: %v", violations)
	}
}

func TestValidate_ChecksCanBeDisabled(t *testing.T) {
	cfg, line, refA, _ := newValidatorConfig()
	cfg.Demands = []*model.Demand{
		{BaseModel: model.BaseModel{ID: uuid.New()}, ReferenceID: refA.ID, Quantity: 30},
	}
	orphan := uuid.New()

	items := []*model.PlanItem{
		item(line.ID, refA.ID, "2025-03-03", 0, 4, 40, false),
		item(line.ID, orphan, "2025-03-04", 0, 4, 40, false),
	}

	v := NewPlanValidator(&ValidatorConfig{
		QuantityTolerance: 1e-3,
		HoursTolerance:    1e-6,
		CheckCompat:       false,
		CheckOverProd:     false,
	})
	violations := v.Validate(cfg, testWeek, items)

	if countType(violations, ViolationOverProduction) != 0 {
		t.Errorf("关闭超产检查后不应报超产: %v", violations)
	}
	if countType(violations, ViolationIncompatible) != 0 {
		t.Errorf("关闭兼容性检查后不应报兼容性: %v", violations)
	}
}
