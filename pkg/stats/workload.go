// Package stats 提供排班统计分析功能
package stats

import (
	"sort"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

// Workload 工作量分布指标
type Workload struct {
	Average      float64        `json:"average"`      // 人均班次数
	Min          int            `json:"min"`          // 最少班次数
	Max          int            `json:"max"`          // 最多班次数
	Variance     float64        `json:"variance"`     // 班次数方差
	Distribution []EmployeeLoad `json:"distribution"` // 每名员工的分布明细
}

// EmployeeLoad 单个员工的工作量明细
type EmployeeLoad struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Name       string    `json:"name"`
	Shifts     int       `json:"shifts"`   // 本周班次数
	Capacity   int       `json:"capacity"` // 周可排班次上限
}

// computeWorkload 统计每名员工的班次数及总体分布
// 统计覆盖全部员工，包括零班次者
func computeWorkload(assignments []*model.ShiftAssignment, employees []*model.Employee) Workload {
	counts := make(map[uuid.UUID]int)
	for _, a := range assignments {
		counts[a.EmployeeID]++
	}

	w := Workload{Distribution: make([]EmployeeLoad, 0, len(employees))}
	for _, emp := range employees {
		w.Distribution = append(w.Distribution, EmployeeLoad{
			EmployeeID: emp.ID,
			Name:       emp.Name,
			Shifts:     counts[emp.ID],
			Capacity:   emp.WeeklyCapacity,
		})
	}
	sort.SliceStable(w.Distribution, func(i, j int) bool {
		if w.Distribution[i].Shifts != w.Distribution[j].Shifts {
			return w.Distribution[i].Shifts > w.Distribution[j].Shifts
		}
		return w.Distribution[i].Name < w.Distribution[j].Name
	})

	if len(employees) == 0 {
		return w
	}

	sum := 0
	w.Min = w.Distribution[len(w.Distribution)-1].Shifts
	w.Max = w.Distribution[0].Shifts
	for _, load := range w.Distribution {
		sum += load.Shifts
	}
	w.Average = float64(sum) / float64(len(employees))

	variance := 0.0
	for _, load := range w.Distribution {
		d := float64(load.Shifts) - w.Average
		variance += d * d
	}
	w.Variance = variance / float64(len(employees))
	return w
}
