// Package optimizer 对已生成的排班做局部搜索优化
package optimizer

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/logger"
	"github.com/paiban/canpai/pkg/model"
	"github.com/paiban/canpai/pkg/scheduler/constraint"
)

// 质量评估与交换评分常量
const (
	qualityBase     = 1000.0 // 质量基准分
	unmetPenalty    = 100.0  // 每缺一人的质量惩罚
	variancePenalty = 10.0   // 工作量方差的质量惩罚系数
	continuityGain  = 2.0    // 交换带来的餐厅连续性收益系数
)

// swap 一次候选交换：两条同岗位分配互换员工
type swap struct {
	first  *model.ShiftAssignment
	second *model.ShiftAssignment
	score  float64
}

// LocalSearch 基于成对交换的局部搜索优化器
// 每轮枚举所有可行的同岗位交换，应用评分最高的一个，
// 仅当整体质量严格提升时接受，否则停止
type LocalSearch struct {
	maxIterations int
	log           *logger.SchedulerLogger
}

// NewLocalSearch 创建局部搜索优化器
func NewLocalSearch(maxIterations int) *LocalSearch {
	if maxIterations <= 0 {
		maxIterations = model.DefaultMaxLocalSearchIterations
	}
	return &LocalSearch{
		maxIterations: maxIterations,
		log:           logger.NewSchedulerLogger(),
	}
}

// Refine 迭代改进排班，返回优化后的分配列表
// 输入列表不被修改
func (l *LocalSearch) Refine(ctx context.Context, sc *constraint.Context, assignments []*model.ShiftAssignment) ([]*model.ShiftAssignment, error) {
	current := cloneAssignments(assignments)
	best := Quality(current, sc.Requirements)

	for iter := 0; iter < l.maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		swaps := l.findSwaps(sc, current)
		if len(swaps) == 0 {
			break
		}

		next := applySwap(current, swaps[0])
		score := Quality(next, sc.Requirements)
		if score <= best {
			break
		}

		l.log.LocalSearchImprovement(iter+1, best, score)
		current = next
		best = score
	}
	return current, nil
}

// findSwaps 枚举可行交换并按收益降序排列，只保留正收益的
func (l *LocalSearch) findSwaps(sc *constraint.Context, assignments []*model.ShiftAssignment) []*swap {
	tracker := constraint.RebuildFrom(sc.Employees, assignments)

	var swaps []*swap
	for i := 0; i < len(assignments); i++ {
		for j := i + 1; j < len(assignments); j++ {
			a, b := assignments[i], assignments[j]
			if !canSwap(tracker, sc, a, b, assignments) {
				continue
			}
			if score := swapScore(tracker, sc, a, b); score > 0 {
				swaps = append(swaps, &swap{first: a, second: b, score: score})
			}
		}
	}

	sort.SliceStable(swaps, func(i, j int) bool {
		return swaps[i].score > swaps[j].score
	})
	return swaps
}

// canSwap 判断两条分配能否互换员工：
// 岗位相同，且双方都能承担对方的槽位（各自原分配视为已让出）
func canSwap(tracker *constraint.Tracker, sc *constraint.Context, a, b *model.ShiftAssignment, assignments []*model.ShiftAssignment) bool {
	if a.Role != b.Role || a.EmployeeID == b.EmployeeID {
		return false
	}

	availA := tracker.Get(a.EmployeeID)
	availB := tracker.Get(b.EmployeeID)
	if availA == nil || availB == nil {
		return false
	}

	slotA := constraint.Slot{RestaurantID: a.RestaurantID, Day: a.Day, Shift: a.Shift}
	slotB := constraint.Slot{RestaurantID: b.RestaurantID, Day: b.Day, Shift: b.Shift}

	if !constraint.IsAvailable(availB, sc, slotA, a.Role, excludeAssignment(assignments, b.ID)) {
		return false
	}
	if !constraint.IsAvailable(availA, sc, slotB, b.Role, excludeAssignment(assignments, a.ID)) {
		return false
	}
	return true
}

// swapScore 交换收益
// 纯交换不改变任何人的班次总数，工作量差额项恒为零，
// 实际驱动力是餐厅连续性（双方在对方餐厅已有的班次数）
func swapScore(tracker *constraint.Tracker, sc *constraint.Context, a, b *model.ShiftAssignment) float64 {
	score := 0.0
	if sc.Options.PreferRestaurantContinuity {
		availA := tracker.Get(a.EmployeeID)
		availB := tracker.Get(b.EmployeeID)
		score += float64(availA.ByRestaurant[b.RestaurantID]+availB.ByRestaurant[a.RestaurantID]) * continuityGain
	}
	return score
}

// applySwap 返回应用交换后的新列表，只替换涉及的两条分配
func applySwap(assignments []*model.ShiftAssignment, sw *swap) []*model.ShiftAssignment {
	out := make([]*model.ShiftAssignment, len(assignments))
	for i, a := range assignments {
		switch a.ID {
		case sw.first.ID:
			moved := *a
			moved.EmployeeID = sw.second.EmployeeID
			out[i] = &moved
		case sw.second.ID:
			moved := *a
			moved.EmployeeID = sw.first.EmployeeID
			out[i] = &moved
		default:
			out[i] = a
		}
	}
	return out
}

// Quality 评估排班整体质量：基准分扣除未满足缺口与工作量方差
func Quality(assignments []*model.ShiftAssignment, requirements []*model.ShiftRequirement) float64 {
	score := qualityBase

	for _, req := range requirements {
		for _, roleReq := range req.Requirements {
			assigned := 0
			for _, a := range assignments {
				if a.RestaurantID == req.RestaurantID && a.Day == req.Day && a.Shift == req.Shift && a.Role == roleReq.Role {
					assigned++
				}
			}
			if assigned < roleReq.Count {
				score -= float64(roleReq.Count-assigned) * unmetPenalty
			}
		}
	}

	counts := make(map[uuid.UUID]int)
	for _, a := range assignments {
		counts[a.EmployeeID]++
	}
	if len(counts) > 0 {
		sum := 0
		for _, c := range counts {
			sum += c
		}
		avg := float64(sum) / float64(len(counts))
		variance := 0.0
		for _, c := range counts {
			d := float64(c) - avg
			variance += d * d
		}
		variance /= float64(len(counts))
		score -= variance * variancePenalty
	}
	return score
}

func cloneAssignments(assignments []*model.ShiftAssignment) []*model.ShiftAssignment {
	out := make([]*model.ShiftAssignment, len(assignments))
	copy(out, assignments)
	return out
}

func excludeAssignment(assignments []*model.ShiftAssignment, id uuid.UUID) []*model.ShiftAssignment {
	out := make([]*model.ShiftAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}
