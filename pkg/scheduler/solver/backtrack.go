package solver

import (
	"context"
	"time"

	"github.com/paiban/canpai/pkg/logger"
	"github.com/paiban/canpai/pkg/model"
	"github.com/paiban/canpai/pkg/scheduler/constraint"
)

// 回溯搜索相关常量
const (
	poolExtra           = 2 // 候选池在需求人数之上额外保留的人数
	feasibilityLines    = 5 // 可行性预判检查的后续行数上限
	feasibilityMinLevel = constraint.FeasibilityThreshold
)

// BacktrackingSolver 回溯搜索求解器
// 按难度优先顺序逐行尝试候选人组合，组合导致后续关键行不可行时回退重试。
// 非关键行在所有组合都失败时允许跳过，关键行失败则向上回溯
type BacktrackingSolver struct {
	maxDepth int
	log      *logger.SchedulerLogger
}

// NewBacktrackingSolver 创建回溯求解器
func NewBacktrackingSolver(maxDepth int) *BacktrackingSolver {
	if maxDepth <= 0 {
		maxDepth = model.DefaultMaxBacktrackDepth
	}
	return &BacktrackingSolver{
		maxDepth: maxDepth,
		log:      logger.NewSchedulerLogger(),
	}
}

// Name 返回求解器名称
func (s *BacktrackingSolver) Name() string {
	return "backtracking"
}

// Solve 执行回溯搜索
// 搜索失败时返回 Success=false，由上层决定是否降级到贪心算法
func (s *BacktrackingSolver) Solve(ctx context.Context, sc *constraint.Context) (*Result, error) {
	start := time.Now()
	tracker := constraint.NewTracker(sc.Employees)
	lines := constraint.AnalyzeLines(tracker, sc)
	s.log.StartSchedule(sc.WeekStart, s.Name(), len(sc.Employees), len(lines))

	assignments, ok, err := s.search(ctx, sc, lines, 0, tracker, nil, 0)
	if err != nil {
		return nil, err
	}

	unfilled := collectUnfilled(assignments, sc.Requirements)
	s.log.ScheduleComplete(sc.WeekStart, s.Name(), len(assignments), len(unfilled), time.Since(start))

	return &Result{
		Assignments: assignments,
		Unfilled:    unfilled,
		Solver:      s.Name(),
		Success:     ok,
		Duration:    time.Since(start),
	}, nil
}

// search 递归处理第 index 条需求行
// 返回的分配列表仅在 ok 为 true 时有意义
func (s *BacktrackingSolver) search(ctx context.Context, sc *constraint.Context, lines []*constraint.Line, index int, tracker *constraint.Tracker, current []*model.ShiftAssignment, depth int) ([]*model.ShiftAssignment, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if index >= len(lines) {
		return current, true, nil
	}

	line := lines[index]

	// 深度耗尽与组合耗尽同样处理：非关键行跳过，关键行失败
	if depth > s.maxDepth {
		return s.exhausted(ctx, sc, lines, index, tracker, current, depth)
	}

	pool := s.candidatePool(tracker, sc, line, lines[index+1:], current)
	if len(pool) < line.Count {
		return s.exhausted(ctx, sc, lines, index, tracker, current, depth)
	}

	slot := line.Slot()
	for _, combo := range combinations(pool, line.Count) {
		if !s.validCombination(combo, sc, slot, line.Role, current) {
			continue
		}

		// 在克隆状态上应用组合，失败时直接丢弃分支
		branch := tracker.Clone()
		next := make([]*model.ShiftAssignment, len(current), len(current)+len(combo))
		copy(next, current)
		for _, cand := range combo {
			next = append(next, assign(branch, sc, slot, line.Role, cand.avail.Employee.ID))
		}

		if !s.futureFeasible(branch, sc, lines, index+1, next) {
			continue
		}

		result, ok, err := s.search(ctx, sc, lines, index+1, branch, next, depth+1)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return result, true, nil
		}
	}

	return s.exhausted(ctx, sc, lines, index, tracker, current, depth)
}

// exhausted 当前行无可用组合：非关键行记录警告后跳过，关键行宣告分支失败
func (s *BacktrackingSolver) exhausted(ctx context.Context, sc *constraint.Context, lines []*constraint.Line, index int, tracker *constraint.Tracker, current []*model.ShiftAssignment, depth int) ([]*model.ShiftAssignment, bool, error) {
	line := lines[index]
	if line.Critical() {
		return nil, false, nil
	}
	slot := line.Slot()
	s.log.LineSkipped(slot.RestaurantID.String(), string(slot.Day), string(slot.Shift), string(line.Role), line.Criticality)
	return s.search(ctx, sc, lines, index+1, tracker, current, depth)
}

// candidatePool 取带前瞻评分的候选，按分数降序保留前 需求人数+2 名
func (s *BacktrackingSolver) candidatePool(tracker *constraint.Tracker, sc *constraint.Context, line *constraint.Line, pending []*constraint.Line, existing []*model.ShiftAssignment) []*candidate {
	scored := scoreWithLookAhead(tracker, sc, line, pending, existing)
	sortByScore(scored)

	pool := make([]*candidate, 0, line.Count+poolExtra)
	for _, cand := range scored {
		if cand.avail.Remaining <= 0 {
			continue
		}
		pool = append(pool, cand)
		if len(pool) >= line.Count+poolExtra {
			break
		}
	}
	return pool
}

// validCombination 组合内不得有重复员工或互斥对，且每人仍需通过资格校验
func (s *BacktrackingSolver) validCombination(combo []*candidate, sc *constraint.Context, slot constraint.Slot, role model.Role, existing []*model.ShiftAssignment) bool {
	for i, cand := range combo {
		if !constraint.IsAvailable(cand.avail, sc, slot, role, existing) {
			return false
		}
		for j := i + 1; j < len(combo); j++ {
			if cand.avail.Employee.ID == combo[j].avail.Employee.ID {
				return false
			}
			if sc.Options.AvoidConflicts && sc.HasConflict(cand.avail.Employee.ID, combo[j].avail.Employee.ID) {
				return false
			}
		}
	}
	return true
}

// futureFeasible 预判后续关键行是否仍有足够候选
// 只检查关键度达到阈值的前若干行，避免预判本身过重
func (s *BacktrackingSolver) futureFeasible(tracker *constraint.Tracker, sc *constraint.Context, lines []*constraint.Line, start int, existing []*model.ShiftAssignment) bool {
	checked := 0
	for _, line := range lines[start:] {
		if line.Criticality < feasibilityMinLevel {
			continue
		}
		if constraint.CountEligible(tracker, sc, line.Slot(), line.Role, existing) < line.Count {
			return false
		}
		checked++
		if checked >= feasibilityLines {
			break
		}
	}
	return true
}

// combinations 枚举大小为 k 的候选组合，保持池内顺序
func combinations(pool []*candidate, k int) [][]*candidate {
	if k <= 0 || k > len(pool) {
		return nil
	}
	var out [][]*candidate
	combo := make([]*candidate, 0, k)
	var walk func(start int)
	walk = func(start int) {
		if len(combo) == k {
			picked := make([]*candidate, k)
			copy(picked, combo)
			out = append(out, picked)
			return
		}
		for i := start; i <= len(pool)-(k-len(combo)); i++ {
			combo = append(combo, pool[i])
			walk(i + 1)
			combo = combo[:len(combo)-1]
		}
	}
	walk(0)
	return out
}
