// Package validator 提供排产计划验证功能
package validator

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

// ViolationType 违规类型
type ViolationType string

const (
	ViolationCapacity       ViolationType = "capacity"        // 超出当日可用小时
	ViolationOverlap        ViolationType = "overlap"         // 排产块时间重叠
	ViolationRateMismatch   ViolationType = "rate_mismatch"   // 数量与时长×产量不符
	ViolationOverProduction ViolationType = "over_production" // 超出需求量
	ViolationIncompatible   ViolationType = "incompatible"    // 产线不能生产该参考
	ViolationOutOfWeek      ViolationType = "out_of_week"     // 日期不在排产周内
	ViolationSetupQuantity  ViolationType = "setup_quantity"  // 换型块带了产量
)

// Violation 违规信息
type Violation struct {
	Type     ViolationType `json:"type"`
	Severity string        `json:"severity"` // error/warning
	LineID   uuid.UUID     `json:"line_id,omitempty"`
	Date     string        `json:"date,omitempty"`
	Message  string        `json:"message"`
	Items    []uuid.UUID   `json:"items,omitempty"` // 相关的排产块ID
}

// PlanValidator 排产计划验证器
type PlanValidator struct {
	config *ValidatorConfig
}

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	QuantityTolerance float64 // 数量校验的浮点容差（吨）
	HoursTolerance    float64 // 小时校验的浮点容差
	CheckCompat       bool    // 是否检查产线兼容性
	CheckOverProd     bool    // 是否检查超产
}

// DefaultValidatorConfig 返回默认配置
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		QuantityTolerance: 1e-3,
		HoursTolerance:    1e-6,
		CheckCompat:       true,
		CheckOverProd:     true,
	}
}

// NewPlanValidator 创建排产计划验证器
func NewPlanValidator(config *ValidatorConfig) *PlanValidator {
	if config == nil {
		config = DefaultValidatorConfig()
	}
	return &PlanValidator{config: config}
}

// Validate 验证一份排产计划是否满足全部不变式
func (v *PlanValidator) Validate(cfg *model.PlanConfig, week model.PlanWeek, items []*model.PlanItem) []Violation {
	violations := make([]Violation, 0)

	violations = append(violations, v.checkDates(week, items)...)
	violations = append(violations, v.checkCapacity(cfg, items)...)
	violations = append(violations, v.checkOverlap(items)...)
	violations = append(violations, v.checkRates(cfg, items)...)
	if v.config.CheckOverProd {
		violations = append(violations, v.checkOverProduction(cfg, items)...)
	}

	return violations
}

// checkDates 检查日期落在排产周内、换型块数量为 0
func (v *PlanValidator) checkDates(week model.PlanWeek, items []*model.PlanItem) []Violation {
	var violations []Violation
	for _, item := range items {
		if !week.Contains(item.Date) {
			violations = append(violations, Violation{
				Type:     ViolationOutOfWeek,
				Severity: "error",
				LineID:   item.LineID,
				Date:     item.Date,
				Message:  fmt.Sprintf("排产块日期 %s 不在排产周 %s 内", item.Date, week),
				Items:    []uuid.UUID{item.ID},
			})
		}
		if item.IsSetup && item.Quantity != 0 {
			violations = append(violations, Violation{
				Type:     ViolationSetupQuantity,
				Severity: "error",
				LineID:   item.LineID,
				Date:     item.Date,
				Message:  fmt.Sprintf("换型块带有产量 %.3f 吨，应为 0", item.Quantity),
				Items:    []uuid.UUID{item.ID},
			})
		}
	}
	return violations
}

// checkCapacity 检查每条产线每天的占用小时不超过配置的可用小时
func (v *PlanValidator) checkCapacity(cfg *model.PlanConfig, items []*model.PlanItem) []Violation {
	type lineDate struct {
		lineID uuid.UUID
		date   string
	}

	hoursByDay := make(map[lineDate]float64)
	for _, item := range items {
		hoursByDay[lineDate{item.LineID, item.Date}] += item.Duration
	}

	availability := make(map[uuid.UUID]map[int]float64)
	for _, av := range cfg.Availabilities {
		if availability[av.LineID] == nil {
			availability[av.LineID] = make(map[int]float64)
		}
		availability[av.LineID][av.DayOfWeek] = av.Hours
	}

	keys := make([]lineDate, 0, len(hoursByDay))
	for k := range hoursByDay {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].lineID.String() < keys[j].lineID.String()
	})

	var violations []Violation
	for _, k := range keys {
		used := hoursByDay[k]
		configured := availability[k.lineID][model.WeekdayIndex(k.date)]
		if used > configured+v.config.HoursTolerance {
			violations = append(violations, Violation{
				Type:     ViolationCapacity,
				Severity: "error",
				LineID:   k.lineID,
				Date:     k.date,
				Message:  fmt.Sprintf("产线在 %s 占用 %.2f 小时，超过可用的 %.2f 小时", k.date, used, configured),
			})
		}
	}
	return violations
}

// checkOverlap 检查同一产线同一天的排产块互不重叠且背靠背有序
func (v *PlanValidator) checkOverlap(items []*model.PlanItem) []Violation {
	type lineDate struct {
		lineID uuid.UUID
		date   string
	}

	grouped := make(map[lineDate][]*model.PlanItem)
	var order []lineDate
	for _, item := range items {
		k := lineDate{item.LineID, item.Date}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], item)
	}

	var violations []Violation
	for _, k := range order {
		group := grouped[k]
		sorted := make([]*model.PlanItem, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].StartHour < sorted[j].StartHour
		})

		for i := 1; i < len(sorted); i++ {
			prev, cur := sorted[i-1], sorted[i]
			if cur.StartHour+v.config.HoursTolerance < prev.EndHour {
				violations = append(violations, Violation{
					Type:     ViolationOverlap,
					Severity: "error",
					LineID:   k.lineID,
					Date:     k.date,
					Message:  fmt.Sprintf("产线在 %s 存在重叠排产块：%.2f-%.2f 与 %.2f-%.2f", k.date, prev.StartHour, prev.EndHour, cur.StartHour, cur.EndHour),
					Items:    []uuid.UUID{prev.ID, cur.ID},
				})
			}
		}
	}
	return violations
}

// checkRates 检查生产块满足 数量 == 时长 × 产量（浮点容差内）
func (v *PlanValidator) checkRates(cfg *model.PlanConfig, items []*model.PlanItem) []Violation {
	type pair struct {
		lineID uuid.UUID
		refID  uuid.UUID
	}
	rates := make(map[pair]float64, len(cfg.Throughputs))
	for _, tp := range cfg.Throughputs {
		rates[pair{tp.LineID, tp.ReferenceID}] = tp.RatePerHour
	}

	var violations []Violation
	for _, item := range items {
		if item.IsSetup {
			continue
		}
		rate, ok := rates[pair{item.LineID, item.ReferenceID}]
		if !ok {
			if v.config.CheckCompat {
				violations = append(violations, Violation{
					Type:     ViolationIncompatible,
					Severity: "error",
					LineID:   item.LineID,
					Date:     item.Date,
					Message:  "产线没有该参考的产能配置，不能生产",
					Items:    []uuid.UUID{item.ID},
				})
			}
			continue
		}
		expected := item.Duration * rate
		if math.Abs(item.Quantity-expected) > v.config.QuantityTolerance {
			violations = append(violations, Violation{
				Type:     ViolationRateMismatch,
				Severity: "error",
				LineID:   item.LineID,
				Date:     item.Date,
				Message:  fmt.Sprintf("排产块数量 %.3f 吨与 时长×产量 = %.3f 吨不符", item.Quantity, expected),
				Items:    []uuid.UUID{item.ID},
			})
		}
	}
	return violations
}

// checkOverProduction 检查每个参考的生产总量不超过需求总量
func (v *PlanValidator) checkOverProduction(cfg *model.PlanConfig, items []*model.PlanItem) []Violation {
	demandByRef := make(map[uuid.UUID]float64)
	for _, d := range cfg.Demands {
		demandByRef[d.ReferenceID] += d.Quantity
	}

	scheduledByRef := make(map[uuid.UUID]float64)
	for _, item := range items {
		if !item.IsSetup {
			scheduledByRef[item.ReferenceID] += item.Quantity
		}
	}

	refs := make([]uuid.UUID, 0, len(scheduledByRef))
	for ref := range scheduledByRef {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })

	var violations []Violation
	for _, ref := range refs {
		scheduled := scheduledByRef[ref]
		demanded := demandByRef[ref]
		if scheduled > demanded+v.config.QuantityTolerance {
			violations = append(violations, Violation{
				Type:     ViolationOverProduction,
				Severity: "error",
				Message:  fmt.Sprintf("参考 %s 排产 %.3f 吨，超过需求总量 %.3f 吨", ref, scheduled, demanded),
			})
		}
	}
	return violations
}

// HasErrors 检查是否存在 error 级别的违规
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == "error" {
			return true
		}
	}
	return false
}
