package solver

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

// TestBacktrackingSolver_Basic 基础回溯：单需求行正常满足
func TestBacktrackingSolver_Basic(t *testing.T) {
	restaurantID := uuid.New()
	employees := []*model.Employee{
		newEmployee("甲", 5, "cook"),
		newEmployee("乙", 5, "cook"),
	}
	requirements := []*model.ShiftRequirement{
		newRequirement(restaurantID, model.Monday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 1}),
	}
	sc := newSolverContext(model.DefaultOptions(), employees, requirements)

	result, err := NewBacktrackingSolver(0).Solve(context.Background(), sc)
	if err != nil {
		t.Fatalf("排班执行失败: %v", err)
	}
	if !result.Success {
		t.Fatal("可行输入应返回 Success=true")
	}
	if len(result.Assignments) != 1 || len(result.Unfilled) != 0 {
		t.Errorf("分配数 = %d, 未满足 = %d", len(result.Assignments), len(result.Unfilled))
	}
}

// TestBacktrackingSolver_ConflictPair 互斥对永不同槽位
func TestBacktrackingSolver_ConflictPair(t *testing.T) {
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

	result, err := NewBacktrackingSolver(0).Solve(context.Background(), sc)
	if err != nil {
		t.Fatalf("排班执行失败: %v", err)
	}

	// 唯一组合 {甲, 乙} 含互斥对：非关键行被跳过而非违反约束
	if n := countSlotRole(result.Assignments, restaurantID, model.Monday, model.ShiftLunch, "cook"); n > 1 {
		t.Errorf("互斥对被排入同一槽位, 分配数 = %d", n)
	}
	if result.Success && len(result.Unfilled) == 0 {
		t.Error("该行不可能被完全满足")
	}
}

// TestBacktrackingSolver_CriticalFailure 关键行无解时宣告失败，交由上层降级
func TestBacktrackingSolver_CriticalFailure(t *testing.T) {
	restaurantID := uuid.New()
	only := newEmployee("独苗", 5, "cook")

	// 周六晚市（关键度 16）需要 2 名厨师，只有 1 人
	requirements := []*model.ShiftRequirement{
		newRequirement(restaurantID, model.Saturday, model.ShiftDinner, model.RoleRequirement{Role: "cook", Count: 2}),
	}
	sc := newSolverContext(model.DefaultOptions(), []*model.Employee{only}, requirements)

	result, err := NewBacktrackingSolver(0).Solve(context.Background(), sc)
	if err != nil {
		t.Fatalf("排班执行失败: %v", err)
	}
	if result.Success {
		t.Error("关键行无解时 Success 应为 false")
	}
	if len(result.Assignments) != 0 {
		t.Errorf("失败分支不应返回分配, got %d", len(result.Assignments))
	}
}

// TestBacktrackingSolver_SkipsNonCriticalForCritical 为关键行保留容量，放弃非关键行
func TestBacktrackingSolver_SkipsNonCriticalForCritical(t *testing.T) {
	restaurantID := uuid.New()
	// 甲乙容量 1，丙只在周六可用。
	// 周一午市要 2 人会耗尽甲乙，使周六晚市（关键）只剩丙一人、缺口无法补上
	a := newEmployee("甲", 1, "cook")
	b := newEmployee("乙", 1, "cook")
	c := newEmployee("丙", 1, "cook")
	c.AvailableDays = []model.Weekday{model.Saturday}

	requirements := []*model.ShiftRequirement{
		newRequirement(restaurantID, model.Monday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 2}),
		newRequirement(restaurantID, model.Saturday, model.ShiftDinner, model.RoleRequirement{Role: "cook", Count: 2}),
	}
	sc := newSolverContext(model.DefaultOptions(), []*model.Employee{a, b, c}, requirements)

	result, err := NewBacktrackingSolver(0).Solve(context.Background(), sc)
	if err != nil {
		t.Fatalf("排班执行失败: %v", err)
	}
	if !result.Success {
		t.Fatal("跳过非关键行后搜索应成功")
	}

	// 关键行满员，非关键行被放弃
	if n := countSlotRole(result.Assignments, restaurantID, model.Saturday, model.ShiftDinner, "cook"); n != 2 {
		t.Errorf("周六晚市分配数 = %d, expected 2", n)
	}
	if n := countSlotRole(result.Assignments, restaurantID, model.Monday, model.ShiftLunch, "cook"); n != 0 {
		t.Errorf("周一午市应被整行跳过, got %d", n)
	}
	if len(result.Unfilled) != 1 || result.Unfilled[0].Day != model.Monday {
		t.Errorf("未满足行应为周一午市: %+v", result.Unfilled)
	}
}

// TestBacktrackingSolver_ContextCancel 上下文取消时立即退出
func TestBacktrackingSolver_ContextCancel(t *testing.T) {
	restaurantID := uuid.New()
	employees := []*model.Employee{newEmployee("甲", 5, "cook")}
	requirements := []*model.ShiftRequirement{
		newRequirement(restaurantID, model.Monday, model.ShiftLunch, model.RoleRequirement{Role: "cook", Count: 1}),
	}
	sc := newSolverContext(model.DefaultOptions(), employees, requirements)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewBacktrackingSolver(0).Solve(ctx, sc); err == nil {
		t.Error("已取消的上下文应返回错误")
	}
}

func TestCombinations(t *testing.T) {
	pool := []*candidate{{}, {}, {}}
	if got := len(combinations(pool, 2)); got != 3 {
		t.Errorf("C(3,2) = %d, expected 3", got)
	}
	if got := len(combinations(pool, 3)); got != 1 {
		t.Errorf("C(3,3) = %d, expected 1", got)
	}
	if combinations(pool, 4) != nil {
		t.Error("k 超过池大小时应返回 nil")
	}
	if combinations(pool, 0) != nil {
		t.Error("k = 0 时应返回 nil")
	}
}
