// Package calendar 提供按天推进的产线日历打包
package calendar

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

// Packer 日历打包器：在产线的日历上分配换型块和生产块
// 游标逐天推进，容量耗尽即进入 Exhausted 状态；所有循环有界
type Packer struct {
	ctx *Context
}

// NewPacker 创建日历打包器
func NewPacker(ctx *Context) *Packer {
	return &Packer{ctx: ctx}
}

// ScheduleTask 在产线游标处放置一个排产块
// 游标超过截止下标时失败；当天剩余小时为 0 或不足以容纳整块时，
// 游标推进一天后重试，重试次数以 horizon 长度 + 1 为上界，保证终止。
// 成功时块的起始小时等于当天已占用的小时数（同一天内的块背靠背排列），
// 且仅在生产块（非换型）落位后更新产线的 lastReferenceId
func (p *Packer) ScheduleTask(ls *LineSchedule, referenceID uuid.UUID, quantity, duration float64, isSetup bool, deadlineIdx int) (*model.PlanItem, bool) {
	if deadlineIdx > 6 {
		deadlineIdx = 6
	}

	for tries := 0; tries <= len(p.ctx.Dates); tries++ {
		if ls.Cursor > deadlineIdx {
			return nil, false
		}

		avail := p.ctx.AvailableHours(ls.LineID, ls.Cursor)
		if avail <= Epsilon || avail+Epsilon < duration {
			// 当天放不下，推进到下一天重试
			ls.Cursor++
			continue
		}

		date := p.ctx.Dates[ls.Cursor]
		start := ls.HoursUsed[date]
		item := &model.PlanItem{
			ID:          p.itemID(ls.LineID, referenceID, date, isSetup),
			LineID:      ls.LineID,
			ReferenceID: referenceID,
			Date:        date,
			StartHour:   start,
			EndHour:     start + duration,
			Duration:    duration,
			Quantity:    quantity,
			IsSetup:     isSetup,
		}

		ls.HoursUsed[date] = start + duration
		if !isSetup {
			ref := referenceID
			ls.LastReferenceID = &ref
		}
		p.ctx.AddItem(item)
		return item, true
	}

	return nil, false
}

// EnsureSetup 在需要时于生产块之前插入换型块
// 产线的 lastReferenceId 非空且不同于目标参考时查换型时间（缺省 0），
// 即使查得 0 小时也要落一个零时长标记块。
// 返回 false 仅当非零换型块放不进截止日期之前（本次选线尝试应中止）；
// 零时长标记放不下时静默跳过
func (p *Packer) EnsureSetup(ls *LineSchedule, referenceID uuid.UUID, deadlineIdx int) (float64, bool) {
	if ls.LastReferenceID == nil || *ls.LastReferenceID == referenceID {
		return 0, true
	}

	hours := p.ctx.SetupHours(ls.LineID, *ls.LastReferenceID, referenceID)
	if _, ok := p.ScheduleTask(ls, referenceID, 0, hours, true, deadlineIdx); !ok {
		if hours > 0 {
			return hours, false
		}
		// 零时长标记越过截止日期时跳过，不算失败
	}
	return hours, true
}

// Produce 在产线上连续放置生产块，直到数量排完或截止前的容量耗尽
// 单日块时长 = min(剩余量/产量, 当天剩余小时)，允许部分天和跨天续排
// 返回实际排产的吨数
func (p *Packer) Produce(ls *LineSchedule, referenceID uuid.UUID, rate, quantity float64, deadlineIdx int) float64 {
	if rate <= 0 {
		return 0
	}
	if deadlineIdx > 6 {
		deadlineIdx = 6
	}

	var placed float64
	remaining := quantity

	// 每轮要么落一个块要么推进游标，2×(horizon+1) 轮内必然终止
	maxIterations := 2 * (len(p.ctx.Dates) + 1)
	for iter := 0; iter < maxIterations && remaining > Epsilon; iter++ {
		if ls.Cursor > deadlineIdx {
			break
		}

		avail := p.ctx.AvailableHours(ls.LineID, ls.Cursor)
		if avail <= Epsilon {
			ls.Cursor++
			continue
		}

		hoursNeeded := remaining / rate
		hoursToUse := math.Min(hoursNeeded, avail)
		blockQty := hoursToUse * rate

		item, ok := p.ScheduleTask(ls, referenceID, blockQty, hoursToUse, false, deadlineIdx)
		if !ok {
			break
		}
		placed += item.Quantity
		remaining -= item.Quantity
	}

	return placed
}

// itemID 生成确定性的排产块 ID
// 相同输入与目标周的两次运行必须产生完全一致的输出，因此不用随机 ID
func (p *Packer) itemID(lineID, referenceID uuid.UUID, date string, isSetup bool) uuid.UUID {
	seq := len(p.ctx.Items)
	name := fmt.Sprintf("%s|%s|%s|%t|%d", lineID, referenceID, date, isSetup, seq)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}
