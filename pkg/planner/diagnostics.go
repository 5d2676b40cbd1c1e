// Package planner 提供周度排产计划引擎
package planner

import (
	"fmt"

	"github.com/paichan/paichan/pkg/model"
	"github.com/paichan/paichan/pkg/planner/calendar"
	"github.com/paichan/paichan/pkg/planner/compat"
)

// Diagnostics 诊断收集器：累积整次运行的错误与警告
// 错误表示该需求一吨都没排上；警告表示部分排产；两者都没有表示完全满足
type Diagnostics struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewDiagnostics 创建诊断收集器
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}
}

// Errorf 追加一条错误
func (d *Diagnostics) Errorf(format string, args ...interface{}) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

// Warnf 追加一条警告
func (d *Diagnostics) Warnf(format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// FatalConfig 检查致命的配置缺失
// 命中任何一项都中止整次运行，返回空计划和唯一一条说明性错误
func (d *Diagnostics) FatalConfig(cfg *model.PlanConfig) (string, bool) {
	switch {
	case len(cfg.Lines) == 0:
		return "未配置任何产线，无法排产", true
	case len(cfg.References) == 0:
		return "未配置任何产品参考，无法排产", true
	case len(cfg.Throughputs) == 0:
		return "未配置任何产能（产线×参考），无法排产", true
	case len(cfg.Demands) == 0:
		return "没有任何需求，无法排产", true
	case len(cfg.Availabilities) == 0:
		return "未配置任何产线可用性，无法排产", true
	}
	return "", false
}

// ReportDemand 根据需求最终的排产量生成诊断
// 一吨未排 → 错误；部分排产 → 警告；措辞区分"无法满足截止日期"和
// "没有兼容产线/产能"两种情形
func (d *Diagnostics) ReportDemand(ctx *calendar.Context, matrix *compat.Matrix, demand *model.Demand, placed float64) {
	if placed+calendar.Epsilon >= demand.Quantity {
		return
	}

	refName := ctx.ReferenceName(demand.ReferenceID)
	unmet := demand.Quantity - placed
	compatible := len(matrix.ForReference(demand.ReferenceID)) > 0

	if placed <= calendar.Epsilon {
		switch {
		case !compatible:
			d.Errorf("参考 %s 没有兼容的产线或产能配置，需求 %.1f 吨未排产", refName, demand.Quantity)
		case demand.HasDeadline():
			d.Errorf("参考 %s 的需求无法在截止日期 %s 前排产，%.1f 吨未排产", refName, *demand.Deadline, demand.Quantity)
		default:
			d.Errorf("参考 %s 的需求产能不足，%.1f 吨未排产", refName, demand.Quantity)
		}
		return
	}

	if demand.HasDeadline() {
		d.Warnf("参考 %s 的需求未能在截止日期 %s 前完全排产：已排产 %.1f 吨，缺口 %.1f 吨", refName, *demand.Deadline, placed, unmet)
	} else {
		d.Warnf("参考 %s 的需求未完全排产：已排产 %.1f 吨，缺口 %.1f 吨", refName, placed, unmet)
	}
}
