// Package constraint 排班上下文与约束判定
package constraint

import (
	"math"
	"sort"

	"github.com/paiban/canpai/pkg/model"
)

// 关键度常量
const (
	weekendCriticality   = 10 // 周末加权
	dinnerCriticality    = 5  // 晚市加权
	criticalityThreshold = 10 // 回溯放弃需求行的关键度阈值
	// FeasibilityThreshold 前瞻可行性检查关注的关键度阈值
	FeasibilityThreshold = 15
)

// Line 需求行：槽位内的单个 (岗位, 人数) 需求及其静态分析结果
type Line struct {
	Requirement *model.ShiftRequirement
	Role        model.Role
	Count       int
	Eligible    int     // 初始合格候选人数
	Difficulty  float64 // 需求人数 / 候选人数，无候选时为 +Inf
	Criticality int     // 静态关键度
}

// Slot 返回需求行所属槽位
func (l *Line) Slot() Slot {
	return Slot{
		RestaurantID: l.Requirement.RestaurantID,
		Day:          l.Requirement.Day,
		Shift:        l.Requirement.Shift,
	}
}

// Critical 是否为关键需求行（回溯搜索不得放弃）
func (l *Line) Critical() bool {
	return l.Criticality >= criticalityThreshold
}

// Criticality 计算槽位静态关键度
// 周末 > 工作日，晚市 > 午市，一周内越靠前的工作日越高
func Criticality(day model.Weekday, shift model.Shift) int {
	criticality := 0
	if day.IsWeekend() {
		criticality += weekendCriticality
	}
	if shift == model.ShiftDinner {
		criticality += dinnerCriticality
	}
	criticality += 6 - day.Index()
	return criticality
}

// AnalyzeLines 将需求集合展开为需求行并按难度/关键度排序
//
// 难度 = 需求人数 / 合格候选人数；排序以难度降序为主，
// 难度差在 0.1 以内时按关键度降序
func AnalyzeLines(tracker *Tracker, ctx *Context) []*Line {
	var lines []*Line
	for _, req := range ctx.Requirements {
		slot := Slot{RestaurantID: req.RestaurantID, Day: req.Day, Shift: req.Shift}
		for _, roleReq := range req.Requirements {
			eligible := CountEligible(tracker, ctx, slot, roleReq.Role, nil)
			difficulty := math.Inf(1)
			if eligible > 0 {
				difficulty = float64(roleReq.Count) / float64(eligible)
			}
			lines = append(lines, &Line{
				Requirement: req,
				Role:        roleReq.Role,
				Count:       roleReq.Count,
				Eligible:    eligible,
				Difficulty:  difficulty,
				Criticality: Criticality(req.Day, req.Shift),
			})
		}
	}
	SortLines(lines)
	return lines
}

// SortLines 按难度/关键度对需求行稳定排序
func SortLines(lines []*Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		di, dj := lines[i].Difficulty, lines[j].Difficulty
		// 两行难度同为 +Inf 时差值为 NaN，落入关键度比较
		if d := di - dj; !math.IsNaN(d) && math.Abs(d) > 0.1 {
			return di > dj
		}
		return lines[i].Criticality > lines[j].Criticality
	})
}
