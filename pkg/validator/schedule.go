// Package validator 提供排班验证功能
package validator

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

// IssueType 问题类型
type IssueType string

const (
	IssueDuplicate       IssueType = "duplicate"        // 同一员工在同一天同一班段重复分配
	IssueDoubleShift     IssueType = "double_shift"     // 同一天两个班段（选项开启时）
	IssueOverAssigned    IssueType = "over_assigned"    // 分配人数超过需求
	IssueRoleMismatch    IssueType = "role_mismatch"    // 员工不具备分配的岗位
	IssueAvailability    IssueType = "availability"     // 员工当天不可用
	IssueConflictPair    IssueType = "conflict_pair"    // 互斥员工出现在同一槽位
	IssueUnknownEmployee IssueType = "unknown_employee" // 分配引用了未知员工
)

// Issue 验证发现的问题
type Issue struct {
	Type        IssueType   `json:"type"`
	Severity    string      `json:"severity"` // error/warning
	EmployeeID  uuid.UUID   `json:"employee_id,omitempty"`
	Day         string      `json:"day,omitempty"`
	Shift       string      `json:"shift,omitempty"`
	Message     string      `json:"message"`
	Assignments []uuid.UUID `json:"assignments,omitempty"` // 相关的分配ID
}

// ScheduleValidator 排班验证器
type ScheduleValidator struct {
	opts      model.Options
	conflicts model.ConflictSet
}

// NewScheduleValidator 创建排班验证器
// conflicts 可为 nil（跳过互斥检查）
func NewScheduleValidator(opts model.Options, conflicts model.ConflictSet) *ScheduleValidator {
	return &ScheduleValidator{opts: opts, conflicts: conflicts}
}

// Validate 检查已生成排班的结构性问题
func (v *ScheduleValidator) Validate(assignments []*model.ShiftAssignment, employees []*model.Employee, requirements []*model.ShiftRequirement) []Issue {
	var issues []Issue

	byID := make(map[uuid.UUID]*model.Employee, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}

	issues = append(issues, v.checkEmployees(assignments, byID)...)
	issues = append(issues, v.checkDuplicates(assignments)...)
	issues = append(issues, v.checkOverAssignment(assignments, requirements)...)
	issues = append(issues, v.checkConflictPairs(assignments)...)
	return issues
}

// checkEmployees 检查岗位资格与当日可用性
func (v *ScheduleValidator) checkEmployees(assignments []*model.ShiftAssignment, byID map[uuid.UUID]*model.Employee) []Issue {
	var issues []Issue
	for _, a := range assignments {
		emp, ok := byID[a.EmployeeID]
		if !ok {
			issues = append(issues, Issue{
				Type:        IssueUnknownEmployee,
				Severity:    "error",
				EmployeeID:  a.EmployeeID,
				Day:         string(a.Day),
				Shift:       string(a.Shift),
				Message:     "分配引用了未知员工",
				Assignments: []uuid.UUID{a.ID},
			})
			continue
		}
		if !emp.HasRole(a.Role) {
			issues = append(issues, Issue{
				Type:        IssueRoleMismatch,
				Severity:    "error",
				EmployeeID:  emp.ID,
				Day:         string(a.Day),
				Shift:       string(a.Shift),
				Message:     fmt.Sprintf("员工 %s 不具备岗位 %s", emp.Name, a.Role),
				Assignments: []uuid.UUID{a.ID},
			})
		}
		if date, err := model.DateOnDay(a.WeekStart, a.Day); err == nil && !availableFor(emp, date, a.Day) {
			issues = append(issues, Issue{
				Type:        IssueAvailability,
				Severity:    "warning",
				EmployeeID:  emp.ID,
				Day:         string(a.Day),
				Shift:       string(a.Shift),
				Message:     fmt.Sprintf("员工 %s 在 %s 声明不可用", emp.Name, date),
				Assignments: []uuid.UUID{a.ID},
			})
		}
	}
	return issues
}

// availableFor 具体日期集合优先于每周可用集合
func availableFor(emp *model.Employee, date string, day model.Weekday) bool {
	if len(emp.AvailableDates) > 0 {
		return emp.AvailableOnDate(date)
	}
	return emp.AvailableOnDay(day)
}

// checkDuplicates 检查重复分配与同日双班
func (v *ScheduleValidator) checkDuplicates(assignments []*model.ShiftAssignment) []Issue {
	var issues []Issue

	type slotKey struct {
		employee uuid.UUID
		day      model.Weekday
		shift    model.Shift
	}
	bySlot := make(map[slotKey][]uuid.UUID)
	type dayKey struct {
		employee uuid.UUID
		day      model.Weekday
	}
	byDay := make(map[dayKey][]uuid.UUID)

	for _, a := range assignments {
		sk := slotKey{employee: a.EmployeeID, day: a.Day, shift: a.Shift}
		bySlot[sk] = append(bySlot[sk], a.ID)
		dk := dayKey{employee: a.EmployeeID, day: a.Day}
		byDay[dk] = append(byDay[dk], a.ID)
	}

	for key, ids := range bySlot {
		if len(ids) > 1 {
			issues = append(issues, Issue{
				Type:        IssueDuplicate,
				Severity:    "error",
				EmployeeID:  key.employee,
				Day:         string(key.day),
				Shift:       string(key.shift),
				Message:     "同一员工在同一天同一班段被重复分配",
				Assignments: ids,
			})
		}
	}

	if v.opts.AvoidSameDayDoubleShift {
		for key, ids := range byDay {
			if len(ids) > 1 && len(bySlot[slotKey{employee: key.employee, day: key.day, shift: model.ShiftLunch}]) > 0 &&
				len(bySlot[slotKey{employee: key.employee, day: key.day, shift: model.ShiftDinner}]) > 0 {
				issues = append(issues, Issue{
					Type:        IssueDoubleShift,
					Severity:    "warning",
					EmployeeID:  key.employee,
					Day:         string(key.day),
					Message:     "同一员工在同一天排了午班和晚班",
					Assignments: ids,
				})
			}
		}
	}
	return issues
}

// checkOverAssignment 检查分配人数是否超出需求
func (v *ScheduleValidator) checkOverAssignment(assignments []*model.ShiftAssignment, requirements []*model.ShiftRequirement) []Issue {
	var issues []Issue
	for _, req := range requirements {
		for _, roleReq := range req.Requirements {
			var matched []uuid.UUID
			for _, a := range assignments {
				if a.RestaurantID == req.RestaurantID && a.Day == req.Day && a.Shift == req.Shift && a.Role == roleReq.Role {
					matched = append(matched, a.ID)
				}
			}
			if len(matched) > roleReq.Count {
				issues = append(issues, Issue{
					Type:        IssueOverAssigned,
					Severity:    "warning",
					Day:         string(req.Day),
					Shift:       string(req.Shift),
					Message:     fmt.Sprintf("岗位 %s 分配了 %d 人，需求仅 %d 人", roleReq.Role, len(matched), roleReq.Count),
					Assignments: matched,
				})
			}
		}
	}
	return issues
}

// checkConflictPairs 检查互斥员工是否出现在同一槽位
func (v *ScheduleValidator) checkConflictPairs(assignments []*model.ShiftAssignment) []Issue {
	if v.conflicts == nil {
		return nil
	}
	var issues []Issue
	for i := 0; i < len(assignments); i++ {
		for j := i + 1; j < len(assignments); j++ {
			a, b := assignments[i], assignments[j]
			if !a.SameSlot(b) || a.EmployeeID == b.EmployeeID {
				continue
			}
			if v.conflicts.Has(a.EmployeeID, b.EmployeeID) {
				issues = append(issues, Issue{
					Type:        IssueConflictPair,
					Severity:    "error",
					Day:         string(a.Day),
					Shift:       string(a.Shift),
					Message:     "互斥员工被排到了同一槽位",
					Assignments: []uuid.UUID{a.ID, b.ID},
				})
			}
		}
	}
	return issues
}
