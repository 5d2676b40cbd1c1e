// Package calendar 提供按天推进的产线日历打包
package calendar

import (
	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

// Epsilon 小时/吨数比较的浮点容差
const Epsilon = 1e-6

// LineSchedule 产线排程状态（单次运行内部状态）
// 由一次排产运行独占，运行结束即丢弃，不共享、不持久化
type LineSchedule struct {
	LineID          uuid.UUID          `json:"line_id"`
	Cursor          int                `json:"cursor"` // 当前日期下标 0..6；> 6 表示整周耗尽
	LastReferenceID *uuid.UUID         `json:"last_reference_id,omitempty"`
	HoursUsed       map[string]float64 `json:"hours_used"` // 日期 -> 已占用小时数
}

// Exhausted 检查产线在指定截止下标前是否已无法再排
func (ls *LineSchedule) Exhausted(deadlineIdx int) bool {
	return ls.Cursor > deadlineIdx
}

type lineDayKey struct {
	lineID uuid.UUID
	day    int
}

type setupKey struct {
	lineID uuid.UUID
	from   uuid.UUID
	to     uuid.UUID
}

type pairKey struct {
	lineID      uuid.UUID
	referenceID uuid.UUID
}

// Context 排产上下文：一次运行的配置索引、产线排程状态与已生成的排产块
// 由编排器独占持有，按引用传入选线器和打包器；选线器只读不写
type Context struct {
	Week  model.PlanWeek
	Dates []string // 周一到周日的 7 个日期

	// 输入数据（只读）
	Config *model.PlanConfig

	// 当前排产结果
	Items []*model.PlanItem

	// 产线排程状态
	schedules map[uuid.UUID]*LineSchedule
	lineOrder []uuid.UUID

	// 索引缓存
	rateByPair     map[pairKey]float64
	hoursByLineDay map[lineDayKey]float64
	setupHours     map[setupKey]float64
	referenceName  map[uuid.UUID]string
	lineName       map[uuid.UUID]string
	itemsByRef     map[uuid.UUID][]*model.PlanItem
}

// NewContext 创建排产上下文
// 不修改传入的配置快照，所有可变状态都在上下文内部
func NewContext(cfg *model.PlanConfig, week model.PlanWeek) *Context {
	ctx := &Context{
		Week:           week,
		Dates:          week.Dates(),
		Config:         cfg,
		Items:          make([]*model.PlanItem, 0),
		schedules:      make(map[uuid.UUID]*LineSchedule, len(cfg.Lines)),
		lineOrder:      make([]uuid.UUID, 0, len(cfg.Lines)),
		rateByPair:     make(map[pairKey]float64, len(cfg.Throughputs)),
		hoursByLineDay: make(map[lineDayKey]float64, len(cfg.Availabilities)),
		setupHours:     make(map[setupKey]float64, len(cfg.SetupTimes)),
		referenceName:  make(map[uuid.UUID]string, len(cfg.References)),
		lineName:       make(map[uuid.UUID]string, len(cfg.Lines)),
		itemsByRef:     make(map[uuid.UUID][]*model.PlanItem),
	}

	for _, line := range cfg.Lines {
		ctx.schedules[line.ID] = &LineSchedule{
			LineID:    line.ID,
			Cursor:    0,
			HoursUsed: make(map[string]float64),
		}
		ctx.lineOrder = append(ctx.lineOrder, line.ID)
		ctx.lineName[line.ID] = line.Name
	}
	for _, ref := range cfg.References {
		ctx.referenceName[ref.ID] = ref.Name
	}
	for _, tp := range cfg.Throughputs {
		ctx.rateByPair[pairKey{tp.LineID, tp.ReferenceID}] = tp.RatePerHour
	}
	for _, av := range cfg.Availabilities {
		ctx.hoursByLineDay[lineDayKey{av.LineID, av.DayOfWeek}] = av.Hours
	}
	for _, st := range cfg.SetupTimes {
		ctx.setupHours[setupKey{st.LineID, st.FromReferenceID, st.ToReferenceID}] = st.Hours
	}

	return ctx
}

// Schedule 获取产线排程状态
func (c *Context) Schedule(lineID uuid.UUID) *LineSchedule {
	return c.schedules[lineID]
}

// LineOrder 返回产线的确定遍历顺序（快照顺序）
func (c *Context) LineOrder() []uuid.UUID {
	return c.lineOrder
}

// Rate 返回 (产线, 参考) 的小时产量
func (c *Context) Rate(lineID, referenceID uuid.UUID) (float64, bool) {
	rate, ok := c.rateByPair[pairKey{lineID, referenceID}]
	return rate, ok
}

// SetupHours 返回产线从一个参考换到另一个参考的换型小时数
// 缺失条目默认为 0
func (c *Context) SetupHours(lineID, fromRef, toRef uuid.UUID) float64 {
	return c.setupHours[setupKey{lineID, fromRef, toRef}]
}

// ConfiguredHours 返回产线在某天（下标 0=周一…6=周日）配置的可用小时数
// 没有可用性条目的那天为 0 小时
func (c *Context) ConfiguredHours(lineID uuid.UUID, dayIdx int) float64 {
	if dayIdx < 0 || dayIdx > 6 {
		return 0
	}
	return c.hoursByLineDay[lineDayKey{lineID, dayIdx}]
}

// AvailableHours 返回产线在某天还能占用的小时数（配置小时 - 已占用小时）
func (c *Context) AvailableHours(lineID uuid.UUID, dayIdx int) float64 {
	if dayIdx < 0 || dayIdx > 6 {
		return 0
	}
	ls := c.schedules[lineID]
	if ls == nil {
		return 0
	}
	avail := c.ConfiguredHours(lineID, dayIdx) - ls.HoursUsed[c.Dates[dayIdx]]
	if avail < 0 {
		return 0
	}
	return avail
}

// RemainingHours 返回产线从当前游标到截止下标（含）的剩余可用小时数
func (c *Context) RemainingHours(lineID uuid.UUID, deadlineIdx int) float64 {
	ls := c.schedules[lineID]
	if ls == nil {
		return 0
	}
	if deadlineIdx > 6 {
		deadlineIdx = 6
	}
	var total float64
	for d := ls.Cursor; d <= deadlineIdx; d++ {
		total += c.AvailableHours(lineID, d)
	}
	return total
}

// RemainingCapacityTons 返回产线在截止前还能生产某参考的吨数
func (c *Context) RemainingCapacityTons(lineID, referenceID uuid.UUID, deadlineIdx int) float64 {
	rate, ok := c.Rate(lineID, referenceID)
	if !ok {
		return 0
	}
	return rate * c.RemainingHours(lineID, deadlineIdx)
}

// AddItem 追加排产块并更新索引
func (c *Context) AddItem(item *model.PlanItem) {
	c.Items = append(c.Items, item)
	if !item.IsSetup {
		c.itemsByRef[item.ReferenceID] = append(c.itemsByRef[item.ReferenceID], item)
	}
}

// ProductionItems 返回某参考的所有生产块（不含换型块）
func (c *Context) ProductionItems(referenceID uuid.UUID) []*model.PlanItem {
	return c.itemsByRef[referenceID]
}

// ScheduledQuantity 返回某参考已排产的吨数
func (c *Context) ScheduledQuantity(referenceID uuid.UUID) float64 {
	var total float64
	for _, item := range c.itemsByRef[referenceID] {
		total += item.Quantity
	}
	return total
}

// ReferenceName 返回参考名称，未知时退化为 ID
func (c *Context) ReferenceName(referenceID uuid.UUID) string {
	if name, ok := c.referenceName[referenceID]; ok && name != "" {
		return name
	}
	return referenceID.String()
}

// LineName 返回产线名称，未知时退化为 ID
func (c *Context) LineName(lineID uuid.UUID) string {
	if name, ok := c.lineName[lineID]; ok && name != "" {
		return name
	}
	return lineID.String()
}

// EffectiveDeadlineIndex 返回需求的有效截止下标：
// min(需求截止日期, 周日)；没有截止日期取周日（6）
// 截止日期早于周一返回 -1，表示整周都无法满足
func (c *Context) EffectiveDeadlineIndex(d *model.Demand) int {
	if !d.HasDeadline() {
		return 6
	}
	t, err := model.ParseDate(*d.Deadline)
	if err != nil {
		return 6
	}
	monday := c.Week.Monday()
	if t.Before(monday) {
		return -1
	}
	idx := int(t.Sub(monday).Hours() / 24)
	if idx > 6 {
		return 6
	}
	return idx
}
