package stats

import (
	"testing"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

func newEmployee(name string, capacity int, roles ...model.Role) *model.Employee {
	return &model.Employee{
		BaseModel:      model.NewBaseModel(),
		Name:           name,
		Roles:          roles,
		WeeklyCapacity: capacity,
	}
}

func newRequirement(restaurantID uuid.UUID, day model.Weekday, shift model.Shift, lines ...model.RoleRequirement) *model.ShiftRequirement {
	return &model.ShiftRequirement{
		BaseModel:    model.NewBaseModel(),
		RestaurantID: restaurantID,
		Day:          day,
		Shift:        shift,
		Requirements: lines,
	}
}

func TestCompute_Satisfaction(t *testing.T) {
	restaurantID := uuid.New()
	emp1 := newEmployee("甲", 5, "cook")
	emp2 := newEmployee("乙", 5, "cook")
	employees := []*model.Employee{emp1, emp2}

	requirements := []*model.ShiftRequirement{
		// 满足：需要 1 厨师，排了 1 人
		newRequirement(restaurantID, model.Monday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 1}),
		// 部分满足：需要 2 厨师，只排了 1 人
		newRequirement(restaurantID, model.Tuesday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 2}),
		// 未满足：需要 1 服务员，没人排
		newRequirement(restaurantID, model.Wednesday, model.ShiftDinner, model.RoleRequirement{Role: "waiter", Count: 1}),
	}
	assignments := []*model.ShiftAssignment{
		model.NewShiftAssignment(restaurantID, emp1.ID, model.Monday, model.ShiftLunch, "cook", "2024-06-10"),
		model.NewShiftAssignment(restaurantID, emp2.ID, model.Tuesday, model.ShiftLunch, "cook", "2024-06-10"),
	}

	report := Compute(assignments, employees, requirements)

	if report.TotalRequirements != 3 {
		t.Errorf("TotalRequirements = %d, expected 3", report.TotalRequirements)
	}
	if report.Satisfied != 1 || report.PartiallySatisfied != 1 || report.Unsatisfied != 1 {
		t.Errorf("归类错误: 满足 %d 部分 %d 未满足 %d", report.Satisfied, report.PartiallySatisfied, report.Unsatisfied)
	}
	// 满足率 = 1/3 ≈ 33.33%
	if report.SatisfactionRate < 33.3 || report.SatisfactionRate > 33.4 {
		t.Errorf("SatisfactionRate = %v, expected ≈33.33", report.SatisfactionRate)
	}
	if report.TotalAssignments != 2 || report.UniqueEmployees != 2 {
		t.Errorf("分配概况错误: %d / %d", report.TotalAssignments, report.UniqueEmployees)
	}
	if report.ByRole["cook"] != 2 || report.ByDay[model.Monday] != 1 || report.ByShift[model.ShiftLunch] != 2 {
		t.Error("按岗位/星期/班段统计错误")
	}
}

func TestCompute_FullSatisfaction(t *testing.T) {
	restaurantID := uuid.New()
	emp := newEmployee("甲", 5, "cook")
	requirements := []*model.ShiftRequirement{
		newRequirement(restaurantID, model.Monday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 1}),
	}
	assignments := []*model.ShiftAssignment{
		model.NewShiftAssignment(restaurantID, emp.ID, model.Monday, model.ShiftLunch, "cook", "2024-06-10"),
	}

	report := Compute(assignments, []*model.Employee{emp}, requirements)
	if report.SatisfactionRate != 100 {
		t.Errorf("SatisfactionRate = %v, expected 100", report.SatisfactionRate)
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	report := Compute(nil, nil, nil)
	if report.TotalRequirements != 0 || report.SatisfactionRate != 0 {
		t.Error("空输入应产生零值报告")
	}
	if len(report.Workload.Distribution) != 0 {
		t.Error("空输入不应有工作量分布")
	}
}

// TestComputeWorkload 工作量分布覆盖零班次员工
func TestComputeWorkload(t *testing.T) {
	restaurantID := uuid.New()
	busy := newEmployee("忙人", 5, "cook")
	mid := newEmployee("一般", 5, "cook")
	idle := newEmployee("闲人", 5, "cook")
	employees := []*model.Employee{idle, busy, mid}

	var assignments []*model.ShiftAssignment
	for _, day := range []model.Weekday{model.Monday, model.Tuesday, model.Wednesday} {
		assignments = append(assignments, model.NewShiftAssignment(restaurantID, busy.ID, day, model.ShiftLunch, "cook", "2024-06-10"))
	}
	assignments = append(assignments, model.NewShiftAssignment(restaurantID, mid.ID, model.Thursday, model.ShiftLunch, "cook", "2024-06-10"))

	w := computeWorkload(assignments, employees)

	// 班次数降序：忙人 3、一般 1、闲人 0
	if len(w.Distribution) != 3 {
		t.Fatalf("分布明细数 = %d, expected 3", len(w.Distribution))
	}
	if w.Distribution[0].Name != "忙人" || w.Distribution[0].Shifts != 3 {
		t.Errorf("首位应为忙人(3): %+v", w.Distribution[0])
	}
	if w.Distribution[2].Name != "闲人" || w.Distribution[2].Shifts != 0 {
		t.Errorf("末位应为零班次的闲人: %+v", w.Distribution[2])
	}

	if w.Min != 0 || w.Max != 3 {
		t.Errorf("Min/Max = %d/%d, expected 0/3", w.Min, w.Max)
	}
	// 均值 = 4/3；方差 = ((3-4/3)² + (1-4/3)² + (0-4/3)²) / 3
	avg := 4.0 / 3.0
	wantVar := ((3-avg)*(3-avg) + (1-avg)*(1-avg) + (0-avg)*(0-avg)) / 3
	if diff := w.Variance - wantVar; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Variance = %v, expected %v", w.Variance, wantVar)
	}
	if diff := w.Average - avg; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Average = %v, expected %v", w.Average, avg)
	}
}

// TestComputeWorkload_TieBreakByName 班次数相同按姓名升序
func TestComputeWorkload_TieBreakByName(t *testing.T) {
	a := newEmployee("阿大", 5, "cook")
	b := newEmployee("阿二", 5, "cook")
	w := computeWorkload(nil, []*model.Employee{b, a})
	if w.Distribution[0].Name != "阿大" {
		t.Errorf("并列时应按姓名升序: %+v", w.Distribution)
	}
}
