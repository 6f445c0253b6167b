// Package constraint 排班上下文与约束判定
package constraint

import (
	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

// 评分公式常量
const (
	baseScore = 100.0

	balanceBelowMeanWeight = 15.0 // 低于均值的补偿权重
	balanceAboveMeanWeight = 8.0  // 高于均值的惩罚权重

	remainingHighWeight    = 8.0  // 剩余容量 > 3 时的权重
	remainingNormalWeight  = 5.0  // 剩余容量 1~3 时的权重
	remainingExhaustedCost = 50.0 // 容量耗尽的固定惩罚

	continuityWeight = 4.0 // 门店连续性权重
	spreadBonus      = 5.0 // 分散模式下低占比门店的奖励
	spreadRatio      = 0.3 // 触发分散奖励的占比阈值

	sameDayPenalty   = 8.0  // 同日既有班次的惩罚权重
	fairnessPenalty  = 1.5  // 总班次数的温和惩罚权重
	scarcePenalty    = 10.0 // 稀缺员工（周容量 ≤ 2）的保留惩罚
	scarceCapacity   = 2
	preferenceWeight = 15.0 // 搭班偏好奖励权重（权重每超出 1.0 一个单位 +15）
)

// Score 计算合格候选员工承担某槽位的期望度评分（越高越优先）
//
// 评分 = 基准 100 + 各项独立可开关的调整，最终下限为 0
func Score(avail *Availability, ctx *Context, slot Slot, existing []*model.ShiftAssignment) float64 {
	score := baseScore
	emp := avail.Employee

	// 工作量平衡：低于均值者加成更大，高于均值者惩罚较小
	if ctx.Options.BalanceWorkload {
		diff := meanAssignments(existing) - float64(avail.Assignments)
		if diff > 0 {
			score += diff * balanceBelowMeanWeight
		} else {
			score += diff * balanceAboveMeanWeight
		}
	}

	// 剩余容量：容量充裕者优先
	switch {
	case avail.Remaining > 3:
		score += float64(avail.Remaining) * remainingHighWeight
	case avail.Remaining > 0:
		score += float64(avail.Remaining) * remainingNormalWeight
	default:
		score -= remainingExhaustedCost
	}

	// 门店连续性；关闭时对低占比门店给予分散奖励
	restCount := avail.ByRestaurant[slot.RestaurantID]
	if ctx.Options.PreferRestaurantContinuity {
		score += float64(restCount) * continuityWeight
	} else if avail.Assignments > 0 {
		if float64(restCount)/float64(avail.Assignments) < spreadRatio {
			score += spreadBonus
		}
	}

	// 同日已有班次的惩罚
	if dayCount := avail.ByDay[slot.Day]; dayCount > 0 {
		score -= float64(dayCount) * sameDayPenalty
	}

	// 总班次数的温和公平惩罚
	score -= float64(avail.Assignments) * fairnessPenalty

	// 稀缺员工保留：周容量很小的员工留给更难的槽位
	if emp.WeeklyCapacity <= scarceCapacity {
		score -= scarcePenalty
	}

	// 搭班偏好：同槽位每个已分配搭档的权重超出 1.0 部分按比例加成
	if ctx.Options.ConsiderPreferences {
		for _, a := range existing {
			if a.RestaurantID == slot.RestaurantID && a.Day == slot.Day && a.Shift == slot.Shift {
				if w := ctx.PreferenceWeight(emp.ID, a.EmployeeID); w > 0 {
					score += (w - 1.0) * preferenceWeight
				}
			}
		}
	}

	if score < 0 {
		return 0
	}
	return score
}

// meanAssignments 计算既有分配中出现过的员工的平均班次数
func meanAssignments(assignments []*model.ShiftAssignment) float64 {
	counts := make(map[uuid.UUID]int)
	for _, a := range assignments {
		counts[a.EmployeeID]++
	}
	if len(counts) == 0 {
		return 0
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return float64(total) / float64(len(counts))
}
