// Package stats 提供排班统计分析功能
package stats

import (
	"github.com/paiban/canpai/pkg/model"
)

// Report 排班统计报告
type Report struct {
	// 需求满足情况
	TotalRequirements  int     `json:"total_requirements"`  // 需求行总数
	Satisfied          int     `json:"satisfied"`           // 完全满足的需求行数
	PartiallySatisfied int     `json:"partially_satisfied"` // 部分满足的需求行数
	Unsatisfied        int     `json:"unsatisfied"`         // 完全未满足的需求行数
	SatisfactionRate   float64 `json:"satisfaction_rate"`   // 满足率 (%)

	// 工作量分布
	Workload Workload `json:"workload"`

	// 分配概况
	TotalAssignments int                   `json:"total_assignments"` // 总分配数
	UniqueEmployees  int                   `json:"unique_employees"`  // 参与排班的员工数
	ByRole           map[model.Role]int    `json:"by_role"`           // 按岗位统计
	ByDay            map[model.Weekday]int `json:"by_day"`            // 按星期统计
	ByShift          map[model.Shift]int   `json:"by_shift"`          // 按班段统计
}

// Compute 计算排班统计报告
// 纯函数，不修改任何输入
func Compute(assignments []*model.ShiftAssignment, employees []*model.Employee, requirements []*model.ShiftRequirement) *Report {
	report := &Report{
		ByRole:  make(map[model.Role]int),
		ByDay:   make(map[model.Weekday]int),
		ByShift: make(map[model.Shift]int),
	}

	// 逐需求行归类：满足 / 部分满足 / 未满足
	for _, req := range requirements {
		for _, roleReq := range req.Requirements {
			report.TotalRequirements++
			assigned := 0
			for _, a := range assignments {
				if a.RestaurantID == req.RestaurantID && a.Day == req.Day && a.Shift == req.Shift && a.Role == roleReq.Role {
					assigned++
				}
			}
			switch {
			case assigned >= roleReq.Count:
				report.Satisfied++
			case assigned > 0:
				report.PartiallySatisfied++
			default:
				report.Unsatisfied++
			}
		}
	}
	if report.TotalRequirements > 0 {
		report.SatisfactionRate = float64(report.Satisfied) / float64(report.TotalRequirements) * 100
	}

	// 分配概况
	seen := make(map[string]struct{})
	for _, a := range assignments {
		report.TotalAssignments++
		report.ByRole[a.Role]++
		report.ByDay[a.Day]++
		report.ByShift[a.Shift]++
		seen[a.EmployeeID.String()] = struct{}{}
	}
	report.UniqueEmployees = len(seen)

	report.Workload = computeWorkload(assignments, employees)
	return report
}
