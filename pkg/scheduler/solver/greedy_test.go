package solver

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
	"github.com/paiban/canpai/pkg/scheduler/constraint"
)

const testWeekStart = "2024-06-10"

// newEmployee 构造测试用员工
func newEmployee(name string, capacity int, roles ...model.Role) *model.Employee {
	return &model.Employee{
		BaseModel:      model.NewBaseModel(),
		Name:           name,
		Roles:          roles,
		WeeklyCapacity: capacity,
	}
}

// newRequirement 构造测试用班次需求
func newRequirement(restaurantID uuid.UUID, day model.Weekday, shift model.Shift, lines ...model.RoleRequirement) *model.ShiftRequirement {
	return &model.ShiftRequirement{
		BaseModel:    model.NewBaseModel(),
		RestaurantID: restaurantID,
		Day:          day,
		Shift:        shift,
		Requirements: lines,
	}
}

// newSolverContext 构造排班上下文
func newSolverContext(opts model.Options, employees []*model.Employee, requirements []*model.ShiftRequirement) *constraint.Context {
	sc := constraint.NewContext(testWeekStart, opts)
	sc.SetEmployees(employees)
	sc.SetRequirements(requirements)
	return sc
}

// countSlotRole 统计某槽位某岗位的分配数
func countSlotRole(assignments []*model.ShiftAssignment, restaurantID uuid.UUID, day model.Weekday, shift model.Shift, role model.Role) int {
	n := 0
	for _, a := range assignments {
		if a.RestaurantID == restaurantID && a.Day == day && a.Shift == shift && a.Role == role {
			n++
		}
	}
	return n
}

// TestGreedySolver_SingleLine 单需求行：两名厨师候选，恰好产生一条分配
func TestGreedySolver_SingleLine(t *testing.T) {
	restaurantID := uuid.New()
	employees := []*model.Employee{
		newEmployee("厨一", 5, "cook"),
		newEmployee("厨二", 5, "cook"),
	}
	requirements := []*model.ShiftRequirement{
		newRequirement(restaurantID, model.Monday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 1}),
	}
	sc := newSolverContext(model.DefaultOptions(), employees, requirements)

	result, err := NewGreedySolver().Solve(context.Background(), sc)
	if err != nil {
		t.Fatalf("排班执行失败: %v", err)
	}

	if len(result.Assignments) != 1 {
		t.Fatalf("分配数 = %d, expected 1", len(result.Assignments))
	}
	if len(result.Unfilled) != 0 {
		t.Errorf("不应有未满足的需求行: %+v", result.Unfilled)
	}
	a := result.Assignments[0]
	if a.Day != model.Monday || a.Shift != model.ShiftLunch || a.Role != "cook" {
		t.Errorf("分配槽位错误: %+v", a)
	}
	if a.WeekStart != testWeekStart {
		t.Errorf("WeekStart = %s, expected %s", a.WeekStart, testWeekStart)
	}
	if !result.Success {
		t.Error("贪心求解应总是返回 Success=true")
	}
}

// TestGreedySolver_CapacityExhausted 周容量耗尽产生未满足行，而非超配
func TestGreedySolver_CapacityExhausted(t *testing.T) {
	restaurantID := uuid.New()
	only := newEmployee("独苗", 1, "cook")
	employees := []*model.Employee{only}
	requirements := []*model.ShiftRequirement{
		newRequirement(restaurantID, model.Monday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 1}),
		newRequirement(restaurantID, model.Tuesday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 1}),
	}
	sc := newSolverContext(model.DefaultOptions(), employees, requirements)

	result, err := NewGreedySolver().Solve(context.Background(), sc)
	if err != nil {
		t.Fatalf("排班执行失败: %v", err)
	}

	// 仅周一被满足，周二成为警告而非致命错误
	if len(result.Assignments) != 1 {
		t.Fatalf("分配数 = %d, expected 1", len(result.Assignments))
	}
	if result.Assignments[0].Day != model.Monday {
		t.Errorf("应优先满足顺序靠前的周一, got %s", result.Assignments[0].Day)
	}
	if len(result.Unfilled) != 1 {
		t.Fatalf("未满足行数 = %d, expected 1", len(result.Unfilled))
	}
	u := result.Unfilled[0]
	if u.Day != model.Tuesday || u.Required != 1 || u.Assigned != 0 {
		t.Errorf("未满足行内容错误: %+v", u)
	}

	// 员工总班次不得超过周容量
	if n := len(result.Assignments); n > only.WeeklyCapacity {
		t.Errorf("分配数 %d 超过周容量 %d", n, only.WeeklyCapacity)
	}
}

// TestGreedySolver_NeverExceedsRequired 分配数不超过需求人数
func TestGreedySolver_NeverExceedsRequired(t *testing.T) {
	restaurantID := uuid.New()
	employees := []*model.Employee{
		newEmployee("甲", 5, "cook"),
		newEmployee("乙", 5, "cook"),
		newEmployee("丙", 5, "cook"),
		newEmployee("丁", 5, "cook"),
	}
	requirements := []*model.ShiftRequirement{
		newRequirement(restaurantID, model.Wednesday, model.ShiftDinner, model.RoleRequirement{Role: "cook", Count: 2}),
	}
	sc := newSolverContext(model.DefaultOptions(), employees, requirements)

	result, err := NewGreedySolver().Solve(context.Background(), sc)
	if err != nil {
		t.Fatalf("排班执行失败: %v", err)
	}
	if n := countSlotRole(result.Assignments, restaurantID, model.Wednesday, model.ShiftDinner, "cook"); n != 2 {
		t.Errorf("槽位分配数 = %d, expected 2", n)
	}
}

// TestGreedySolver_Deterministic 相同输入两次求解产生相同输出
func TestGreedySolver_Deterministic(t *testing.T) {
	restaurantID := uuid.New()
	employees := []*model.Employee{
		newEmployee("甲", 3, "cook", "waiter"),
		newEmployee("乙", 3, "cook"),
		newEmployee("丙", 2, "waiter"),
	}
	var requirements []*model.ShiftRequirement
	for _, day := range []model.Weekday{model.Monday, model.Wednesday, model.Saturday} {
		requirements = append(requirements,
			newRequirement(restaurantID, day, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 1}),
			newRequirement(restaurantID, day, model.ShiftDinner, model.RoleRequirement{Role: "waiter", Count: 1}),
		)
	}

	solve := func() []*model.ShiftAssignment {
		sc := newSolverContext(model.DefaultOptions(), employees, requirements)
		result, err := NewGreedySolver().Solve(context.Background(), sc)
		if err != nil {
			t.Fatalf("排班执行失败: %v", err)
		}
		return result.Assignments
	}

	first, second := solve(), solve()
	if len(first) != len(second) {
		t.Fatalf("两次求解分配数不同: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.EmployeeID != b.EmployeeID || a.Day != b.Day || a.Shift != b.Shift || a.Role != b.Role {
			t.Errorf("第 %d 条分配不一致: %+v vs %+v", i, a, b)
		}
	}
}

// TestGreedySolver_ConflictPairSameLine 互斥员工不得被同一需求行排入同一槽位
func TestGreedySolver_ConflictPairSameLine(t *testing.T) {
	restaurantID := uuid.New()
	a := newEmployee("甲", 5, "cook")
	b := newEmployee("乙", 5, "cook")

	requirements := []*model.ShiftRequirement{
		newRequirement(restaurantID, model.Monday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 2}),
	}
	sc := newSolverContext(model.DefaultOptions(), []*model.Employee{a, b}, requirements)
	conflicts := model.NewConflictSet()
	conflicts.Add(a.ID, b.ID)
	sc.SetRelations(conflicts, nil)

	result, err := NewGreedySolver().Solve(context.Background(), sc)
	if err != nil {
		t.Fatalf("排班执行失败: %v", err)
	}

	// 行内第二次分配前重新校验资格，至多排入一人
	if n := countSlotRole(result.Assignments, restaurantID, model.Monday, model.ShiftLunch, "cook"); n != 1 {
		t.Errorf("互斥对槽位分配数 = %d, expected 1", n)
	}
	if len(result.Unfilled) != 1 {
		t.Fatalf("应有一条部分满足的需求行, got %d", len(result.Unfilled))
	}
	if u := result.Unfilled[0]; u.Required != 2 || u.Assigned != 1 {
		t.Errorf("未满足行内容错误: %+v", u)
	}
}

// TestGreedySolver_NoDuplicateDayShift 同一员工不得在同 (星期, 班段) 出现两次
func TestGreedySolver_NoDuplicateDayShift(t *testing.T) {
	r1, r2 := uuid.New(), uuid.New()
	only := newEmployee("独苗", 5, "cook")
	requirements := []*model.ShiftRequirement{
		newRequirement(r1, model.Monday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 1}),
		newRequirement(r2, model.Monday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 1}),
	}
	sc := newSolverContext(model.DefaultOptions(), []*model.Employee{only}, requirements)

	result, err := NewGreedySolver().Solve(context.Background(), sc)
	if err != nil {
		t.Fatalf("排班执行失败: %v", err)
	}
	if len(result.Assignments) != 1 {
		t.Errorf("跨门店同 (星期, 班段) 应只分配一次, got %d", len(result.Assignments))
	}
}
