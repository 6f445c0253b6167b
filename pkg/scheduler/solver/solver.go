// Package solver 提供排班求解器：基础贪心、难度优先贪心与有界回溯搜索
package solver

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
	"github.com/paiban/canpai/pkg/scheduler/constraint"
)

// Solver 求解器接口
type Solver interface {
	// Solve 在给定上下文内生成一周排班
	Solve(ctx context.Context, sc *constraint.Context) (*Result, error)

	// Name 返回求解器名称
	Name() string
}

// Result 求解结果
type Result struct {
	Assignments []*model.ShiftAssignment `json:"assignments"`
	Unfilled    []UnfilledLine           `json:"unfilled,omitempty"`
	Solver      string                   `json:"solver"`
	Success     bool                     `json:"success"`
	Duration    time.Duration            `json:"duration"`
}

// UnfilledLine 未完全满足的需求行（警告，非致命）
type UnfilledLine struct {
	RestaurantID uuid.UUID     `json:"restaurant_id"`
	Day          model.Weekday `json:"day"`
	Shift        model.Shift   `json:"shift"`
	Role         model.Role    `json:"role"`
	Required     int           `json:"required"`
	Assigned     int           `json:"assigned"`
}

// candidate 带评分的候选员工
type candidate struct {
	avail  *constraint.Availability
	score  float64
	impact float64 // 前瞻影响（仅高级算法填充）
}

// scoreCandidates 找出合格候选并评分，保持员工输入顺序
func scoreCandidates(tracker *constraint.Tracker, sc *constraint.Context, slot constraint.Slot, role model.Role, existing []*model.ShiftAssignment) []*candidate {
	var scored []*candidate
	for _, avail := range tracker.All() {
		if !constraint.IsAvailable(avail, sc, slot, role, existing) {
			continue
		}
		scored = append(scored, &candidate{
			avail: avail,
			score: constraint.Score(avail, sc, slot, existing),
		})
	}
	return scored
}

// sortByScore 按评分降序稳定排序（并列时保持员工输入顺序）
func sortByScore(cands []*candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
}

// assign 创建分配并记入运行期状态
func assign(tracker *constraint.Tracker, sc *constraint.Context, slot constraint.Slot, role model.Role, employeeID uuid.UUID) *model.ShiftAssignment {
	a := model.NewShiftAssignment(slot.RestaurantID, employeeID, slot.Day, slot.Shift, role, sc.WeekStart)
	tracker.Record(a)
	return a
}

// countAssigned 统计某需求行已分配人数
func countAssigned(assignments []*model.ShiftAssignment, slot constraint.Slot, role model.Role) int {
	count := 0
	for _, a := range assignments {
		if a.RestaurantID == slot.RestaurantID && a.Day == slot.Day && a.Shift == slot.Shift && a.Role == role {
			count++
		}
	}
	return count
}

// collectUnfilled 对照需求集合统计未满足的需求行
func collectUnfilled(assignments []*model.ShiftAssignment, requirements []*model.ShiftRequirement) []UnfilledLine {
	var unfilled []UnfilledLine
	for _, req := range requirements {
		slot := constraint.Slot{RestaurantID: req.RestaurantID, Day: req.Day, Shift: req.Shift}
		for _, roleReq := range req.Requirements {
			assigned := countAssigned(assignments, slot, roleReq.Role)
			if assigned < roleReq.Count {
				unfilled = append(unfilled, UnfilledLine{
					RestaurantID: req.RestaurantID,
					Day:          req.Day,
					Shift:        req.Shift,
					Role:         roleReq.Role,
					Required:     roleReq.Count,
					Assigned:     assigned,
				})
			}
		}
	}
	return unfilled
}
