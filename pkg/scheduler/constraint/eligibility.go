// Package constraint 排班上下文与约束判定
package constraint

import (
	"github.com/paiban/canpai/pkg/model"
)

// IsAvailable 判定员工能否承担指定槽位与岗位（硬约束，纯谓词）
//
// 依次拒绝：岗位资质不符、门店受限、日期/星期不可用、容量耗尽、
// 同槽位重复、同日连排（选项开启时）、与同槽位既有员工互斥（选项开启时）
func IsAvailable(avail *Availability, ctx *Context, slot Slot, role model.Role, existing []*model.ShiftAssignment) bool {
	emp := avail.Employee

	// 岗位资质：匹配完整岗位列表
	if !emp.HasRole(role) {
		return false
	}

	// 门店限制
	if !emp.WorksAt(slot.RestaurantID) {
		return false
	}

	// 可用性：特定日期集合非空时覆盖每周集合，
	// 员工仅在具体日期 (周起始+星期偏移) 命中时可用
	if len(emp.AvailableDates) > 0 {
		date, err := model.DateOnDay(ctx.WeekStart, slot.Day)
		if err != nil || !emp.AvailableOnDate(date) {
			return false
		}
	} else if !emp.AvailableOnDay(slot.Day) {
		return false
	}

	// 剩余容量
	if avail.Remaining <= 0 {
		return false
	}

	// 同一 (星期, 班段) 不得重复分配
	for _, a := range existing {
		if a.EmployeeID == emp.ID && a.Day == slot.Day && a.Shift == slot.Shift {
			return false
		}
	}

	// 同日午市+晚市连排
	if ctx.Options.AvoidSameDayDoubleShift {
		other := slot.Shift.Other()
		for _, a := range existing {
			if a.EmployeeID == emp.ID && a.Day == slot.Day && a.Shift == other {
				return false
			}
		}
	}

	// 与同槽位既有员工的互斥关系
	if ctx.Options.AvoidConflicts {
		for _, a := range existing {
			if a.RestaurantID == slot.RestaurantID && a.Day == slot.Day && a.Shift == slot.Shift {
				if ctx.HasConflict(emp.ID, a.EmployeeID) {
					return false
				}
			}
		}
	}

	return true
}

// CountEligible 统计某需求行当前的合格候选人数
func CountEligible(tracker *Tracker, ctx *Context, slot Slot, role model.Role, existing []*model.ShiftAssignment) int {
	count := 0
	for _, avail := range tracker.All() {
		if IsAvailable(avail, ctx, slot, role, existing) {
			count++
		}
	}
	return count
}
