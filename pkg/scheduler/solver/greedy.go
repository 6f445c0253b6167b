// Package solver 排班求解器
package solver

import (
	"context"
	"sort"
	"time"

	"github.com/paiban/canpai/pkg/logger"
	"github.com/paiban/canpai/pkg/model"
	"github.com/paiban/canpai/pkg/scheduler/constraint"
)

// GreedySolver 基础贪心求解器
// 按固定的 星期 × 班段 × 门店 顺序逐行分配，作为保底算法保留
type GreedySolver struct {
	log *logger.SchedulerLogger
}

// NewGreedySolver 创建基础贪心求解器
func NewGreedySolver() *GreedySolver {
	return &GreedySolver{log: logger.NewSchedulerLogger()}
}

// Name 返回求解器名称
func (s *GreedySolver) Name() string {
	return "greedy"
}

// Solve 按固定顺序贪心分配
func (s *GreedySolver) Solve(ctx context.Context, sc *constraint.Context) (*Result, error) {
	start := time.Now()
	tracker := constraint.NewTracker(sc.Employees)
	ordered := orderRequirements(sc.Requirements)
	s.log.StartSchedule(sc.WeekStart, s.Name(), len(sc.Employees), countLines(ordered))

	var assignments []*model.ShiftAssignment

	for _, req := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slot := constraint.Slot{RestaurantID: req.RestaurantID, Day: req.Day, Shift: req.Shift}
		for _, roleReq := range req.Requirements {
			scored := scoreCandidates(tracker, sc, slot, roleReq.Role, assignments)
			sortByScore(scored)

			assigned := 0
			for _, cand := range scored {
				if assigned >= roleReq.Count {
					break
				}
				if cand.avail.Remaining <= 0 {
					continue
				}
				// 行内多次分配之间重新校验资格，避免互斥员工同进一个槽位
				if !constraint.IsAvailable(cand.avail, sc, slot, roleReq.Role, assignments) {
					continue
				}
				assignments = append(assignments, assign(tracker, sc, slot, roleReq.Role, cand.avail.Employee.ID))
				assigned++
			}

			if assigned < roleReq.Count {
				s.log.UnfilledLine(slot.RestaurantID.String(), string(slot.Day), string(slot.Shift), string(roleReq.Role), assigned, roleReq.Count)
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

// orderRequirements 按 星期、班段、门店 的固定顺序排序需求
func orderRequirements(requirements []*model.ShiftRequirement) []*model.ShiftRequirement {
	ordered := make([]*model.ShiftRequirement, len(requirements))
	copy(ordered, requirements)
	sort.SliceStable(ordered, func(i, j int) bool {
		if d := ordered[i].Day.Index() - ordered[j].Day.Index(); d != 0 {
			return d < 0
		}
		if ordered[i].Shift != ordered[j].Shift {
			return ordered[i].Shift == model.ShiftLunch
		}
		return ordered[i].RestaurantID.String() < ordered[j].RestaurantID.String()
	})
	return ordered
}

// countLines 统计需求行总数
func countLines(requirements []*model.ShiftRequirement) int {
	n := 0
	for _, req := range requirements {
		n += len(req.Requirements)
	}
	return n
}
