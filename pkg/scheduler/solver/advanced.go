// Package solver 排班求解器
package solver

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/logger"
	"github.com/paiban/canpai/pkg/model"
	"github.com/paiban/canpai/pkg/scheduler/constraint"
)

// 前瞻相关常量
const (
	lookAheadPenalty = 15.0 // 前瞻影响的评分惩罚系数
	blockThreshold   = 20.0 // 视为阻塞后续关键行的影响阈值
	alternativeRatio = 0.8  // 替代候选需达到的评分比例
	harderImpact     = 0.5  // 仍可行但变难的行的影响系数
)

// AdvancedSolver 难度优先贪心求解器
// 按难度/关键度排序处理需求行，评分带前瞻惩罚，
// 行未满足时尝试智能重排：把低关键度槽位让渡给关键行
type AdvancedSolver struct {
	log *logger.SchedulerLogger
}

// NewAdvancedSolver 创建难度优先求解器
func NewAdvancedSolver() *AdvancedSolver {
	return &AdvancedSolver{log: logger.NewSchedulerLogger()}
}

// Name 返回求解器名称
func (s *AdvancedSolver) Name() string {
	return "advanced-greedy"
}

// Solve 按难度优先顺序分配，评分考虑对后续需求行的影响
func (s *AdvancedSolver) Solve(ctx context.Context, sc *constraint.Context) (*Result, error) {
	start := time.Now()
	tracker := constraint.NewTracker(sc.Employees)
	lines := constraint.AnalyzeLines(tracker, sc)
	s.log.StartSchedule(sc.WeekStart, s.Name(), len(sc.Employees), len(lines))

	var assignments []*model.ShiftAssignment

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slot := line.Slot()
		pending := lines[i+1:]
		scored := scoreWithLookAhead(tracker, sc, line, pending, assignments)
		sortByScore(scored)

		assigned := 0
		for _, cand := range scored {
			if assigned >= line.Count {
				break
			}
			if cand.avail.Remaining <= 0 {
				continue
			}
			// 行内多次分配之间重新校验资格，避免重复占用同一槽位
			if !constraint.IsAvailable(cand.avail, sc, slot, line.Role, assignments) {
				continue
			}

			// 首选会阻塞后续关键行时，尝试评分相近且影响更小的替代者
			if cand.impact > blockThreshold && assigned < line.Count-1 {
				if alt := findAlternative(scored, cand, sc, slot, line.Role, assignments); alt != nil {
					assignments = append(assignments, assign(tracker, sc, slot, line.Role, alt.avail.Employee.ID))
					assigned++
					continue
				}
			}

			assignments = append(assignments, assign(tracker, sc, slot, line.Role, cand.avail.Employee.ID))
			assigned++
		}

		// 仍未满足时尝试智能重排
		if assigned < line.Count {
			moved := s.reassign(tracker, sc, line, assigned, &assignments)
			if moved > 0 {
				s.log.Reassignment(slot.RestaurantID.String(), string(slot.Day), string(slot.Shift), string(line.Role), moved)
				assigned += moved
			}
			if assigned < line.Count {
				s.log.UnfilledLine(slot.RestaurantID.String(), string(slot.Day), string(slot.Shift), string(line.Role), assigned, line.Count)
			}
		}
	}

	unfilled := collectUnfilled(assignments, sc.Requirements)
	s.log.ScheduleComplete(sc.WeekStart, s.Name(), len(assignments), len(unfilled), time.Since(start))

	return &Result{
		Assignments: assignments,
		Unfilled:    unfilled,
		Solver:      s.Name(),
		Success:     true,
		Duration:    time.Since(start),
	}, nil
}

// scoreWithLookAhead 评分并叠加前瞻惩罚：
// 模拟分配候选人后重算待处理行的候选人数，阻塞越重扣分越多
func scoreWithLookAhead(tracker *constraint.Tracker, sc *constraint.Context, line *constraint.Line, pending []*constraint.Line, existing []*model.ShiftAssignment) []*candidate {
	slot := line.Slot()
	var scored []*candidate
	for _, avail := range tracker.All() {
		if !constraint.IsAvailable(avail, sc, slot, line.Role, existing) {
			continue
		}
		impact := futureImpact(tracker, sc, slot, line.Role, avail.Employee.ID, pending, existing)
		scored = append(scored, &candidate{
			avail:  avail,
			score:  constraint.Score(avail, sc, slot, existing) - impact*lookAheadPenalty,
			impact: impact,
		})
	}
	return scored
}

// futureImpact 计算把某员工分配到当前槽位对待处理需求行的影响
//
// 影响 = Σ（候选数跌破需求人数的行：关键度 × 缺口）+ Σ（仍可行但变难的行：关键度 × 0.5）
func futureImpact(tracker *constraint.Tracker, sc *constraint.Context, slot constraint.Slot, role model.Role, employeeID uuid.UUID, pending []*constraint.Line, existing []*model.ShiftAssignment) float64 {
	// 在克隆状态上模拟这次分配
	temp := model.NewShiftAssignment(slot.RestaurantID, employeeID, slot.Day, slot.Shift, role, sc.WeekStart)
	clone := tracker.Clone()
	clone.Record(temp)

	tempExisting := make([]*model.ShiftAssignment, 0, len(existing)+1)
	tempExisting = append(tempExisting, existing...)
	tempExisting = append(tempExisting, temp)

	impact := 0.0
	for _, line := range pending {
		after := constraint.CountEligible(clone, sc, line.Slot(), line.Role, tempExisting)
		if after < line.Count {
			impact += float64(line.Criticality) * float64(line.Count-after)
		} else if after < line.Eligible {
			impact += float64(line.Criticality) * harderImpact
		}
	}
	return impact
}

// findAlternative 在候选中寻找评分不低于首选 80% 且影响低于阈值的替代者
func findAlternative(scored []*candidate, current *candidate, sc *constraint.Context, slot constraint.Slot, role model.Role, existing []*model.ShiftAssignment) *candidate {
	for _, alt := range scored {
		if alt == current || alt.avail.Remaining <= 0 {
			continue
		}
		if alt.score <= current.score*alternativeRatio || alt.impact > blockThreshold {
			continue
		}
		if !constraint.IsAvailable(alt.avail, sc, slot, role, existing) {
			continue
		}
		return alt
	}
	return nil
}

// reassign 智能重排：为未满足的关键行腾挪人手
//
// 找一条同岗位但关键度更低的既有分配，确认有替补能接手被让出的槽位，
// 再把原持有人移到关键行上。净分配容量不减少，只向高关键度行倾斜
func (s *AdvancedSolver) reassign(tracker *constraint.Tracker, sc *constraint.Context, line *constraint.Line, assigned int, assignments *[]*model.ShiftAssignment) int {
	still := line.Count - assigned
	if still <= 0 {
		return 0
	}
	slot := line.Slot()

	// 收集同岗位且关键度严格更低的既有分配，按关键度升序
	var movable []*model.ShiftAssignment
	for _, a := range *assignments {
		if a.Role != line.Role {
			continue
		}
		if constraint.Criticality(a.Day, a.Shift) < line.Criticality {
			movable = append(movable, a)
		}
	}
	sort.SliceStable(movable, func(i, j int) bool {
		return constraint.Criticality(movable[i].Day, movable[i].Shift) < constraint.Criticality(movable[j].Day, movable[j].Shift)
	})
	if len(movable) > still*2 {
		movable = movable[:still*2]
	}

	moved := 0
	for _, old := range movable {
		holder := tracker.Get(old.EmployeeID)
		if holder == nil {
			continue
		}

		// 原持有人需能承担目标槽位（其原分配视为已让出）
		without := removeAssignment(*assignments, old.ID)
		if !constraint.IsAvailable(holder, sc, slot, line.Role, without) {
			continue
		}

		// 为被让出的槽位找替补
		oldSlot := constraint.Slot{RestaurantID: old.RestaurantID, Day: old.Day, Shift: old.Shift}
		sub := findSubstitute(tracker, sc, oldSlot, old.Role, old.EmployeeID, without)
		if sub == nil {
			continue
		}

		// 原持有人：原槽位计数移到目标槽位，净班次数不变
		holder.ByDay[old.Day]--
		holder.ByRestaurant[old.RestaurantID]--
		holder.ByDay[slot.Day]++
		holder.ByRestaurant[slot.RestaurantID]++

		// 替补接管被让出的槽位
		tracker.Record(&model.ShiftAssignment{
			EmployeeID:   sub.Employee.ID,
			RestaurantID: old.RestaurantID,
			Day:          old.Day,
			Shift:        old.Shift,
		})

		// 原地改写被让出的分配，再为关键行追加新分配
		holderID := old.EmployeeID
		old.EmployeeID = sub.Employee.ID
		old.ID = uuid.New()
		*assignments = append(*assignments, model.NewShiftAssignment(slot.RestaurantID, holderID, slot.Day, slot.Shift, line.Role, sc.WeekStart))

		moved++
		if moved >= still {
			break
		}
	}
	return moved
}

// findSubstitute 为被让出的槽位寻找最佳替补（排除原持有人）
func findSubstitute(tracker *constraint.Tracker, sc *constraint.Context, slot constraint.Slot, role model.Role, exclude uuid.UUID, existing []*model.ShiftAssignment) *constraint.Availability {
	scored := scoreCandidates(tracker, sc, slot, role, existing)
	sortByScore(scored)
	for _, cand := range scored {
		if cand.avail.Employee.ID == exclude || cand.avail.Remaining <= 0 {
			continue
		}
		return cand.avail
	}
	return nil
}

// removeAssignment 返回剔除指定分配后的列表副本
func removeAssignment(assignments []*model.ShiftAssignment, id uuid.UUID) []*model.ShiftAssignment {
	out := make([]*model.ShiftAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}
