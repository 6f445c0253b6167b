package constraint

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

func TestCriticality(t *testing.T) {
	tests := []struct {
		name     string
		day      model.Weekday
		shift    model.Shift
		expected int
	}{
		{"周一午市", model.Monday, model.ShiftLunch, 6},
		{"周一晚市", model.Monday, model.ShiftDinner, 11},
		{"周五晚市", model.Friday, model.ShiftDinner, 7},
		{"周六午市", model.Saturday, model.ShiftLunch, 11},
		{"周六晚市", model.Saturday, model.ShiftDinner, 16},
		{"周日晚市", model.Sunday, model.ShiftDinner, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c := Criticality(tt.day, tt.shift); c != tt.expected {
				t.Errorf("Criticality(%s, %s) = %d, expected %d", tt.day, tt.shift, c, tt.expected)
			}
		})
	}
}

func TestLine_Critical(t *testing.T) {
	weekend := &Line{Criticality: Criticality(model.Saturday, model.ShiftLunch)}
	if !weekend.Critical() {
		t.Error("周末需求行应为关键行")
	}
	weekday := &Line{Criticality: Criticality(model.Thursday, model.ShiftLunch)}
	if weekday.Critical() {
		t.Error("周四午市不应为关键行")
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

func TestAnalyzeLines(t *testing.T) {
	restaurantID := uuid.New()
	cook1 := newEmployee("厨一", "cook")
	cook2 := newEmployee("厨二", "cook")
	waiter := newEmployee("服一", "waiter")

	ctx := newTestContext(model.DefaultOptions(), cook1, cook2, waiter)
	ctx.SetRequirements([]*model.ShiftRequirement{
		newRequirement(restaurantID, model.Monday, model.ShiftLunch,
			model.RoleRequirement{Role: "cook", Count: 1},    // 难度 0.5
			model.RoleRequirement{Role: "waiter", Count: 1},  // 难度 1.0
			model.RoleRequirement{Role: "manager", Count: 1}, // 无候选 → +Inf
		),
	})
	tracker := NewTracker(ctx.Employees)

	lines := AnalyzeLines(tracker, ctx)
	if len(lines) != 3 {
		t.Fatalf("需求行数 = %d, expected 3", len(lines))
	}

	// 难度降序：manager(+Inf) > waiter(1.0) > cook(0.5)
	if lines[0].Role != "manager" || !math.IsInf(lines[0].Difficulty, 1) {
		t.Errorf("首行应为无候选的 manager, got %s (难度 %v)", lines[0].Role, lines[0].Difficulty)
	}
	if lines[1].Role != "waiter" || lines[2].Role != "cook" {
		t.Errorf("排序错误: %s, %s", lines[1].Role, lines[2].Role)
	}
	if lines[2].Eligible != 2 {
		t.Errorf("cook 候选人数 = %d, expected 2", lines[2].Eligible)
	}
}

// TestSortLines_CriticalityTieBreak 难度接近时按关键度降序
func TestSortLines_CriticalityTieBreak(t *testing.T) {
	restaurantID := uuid.New()
	mondayLine := &Line{
		Requirement: newRequirement(restaurantID, model.Monday, model.ShiftLunch),
		Role:        "cook", Count: 1, Eligible: 2,
		Difficulty:  0.5,
		Criticality: Criticality(model.Monday, model.ShiftLunch),
	}
	saturdayLine := &Line{
		Requirement: newRequirement(restaurantID, model.Saturday, model.ShiftDinner),
		Role:        "cook", Count: 1, Eligible: 2,
		Difficulty:  0.55,
		Criticality: Criticality(model.Saturday, model.ShiftDinner),
	}

	lines := []*Line{mondayLine, saturdayLine}
	SortLines(lines)
	if lines[0] != saturdayLine {
		t.Error("难度差在并列窗口内时应按关键度排序，周六晚市在前")
	}

	// 两行难度同为 +Inf 时按关键度排序
	infA := &Line{Difficulty: math.Inf(1), Criticality: 6}
	infB := &Line{Difficulty: math.Inf(1), Criticality: 16}
	infLines := []*Line{infA, infB}
	SortLines(infLines)
	if infLines[0] != infB {
		t.Error("难度同为 +Inf 时关键度较高的行应在前")
	}
}

func TestTracker_CloneIsolation(t *testing.T) {
	restaurantID := uuid.New()
	emp := newEmployee("本体", "cook")
	tracker := NewTracker([]*model.Employee{emp})

	branch := tracker.Clone()
	branch.Record(model.NewShiftAssignment(restaurantID, emp.ID, model.Monday, model.ShiftLunch, "cook", "2024-06-10"))

	if tracker.Get(emp.ID).Assignments != 0 {
		t.Error("分支上的记录不应影响原树")
	}
	if branch.Get(emp.ID).Assignments != 1 {
		t.Error("分支应记录新分配")
	}
	if branch.Get(emp.ID).Remaining != emp.WeeklyCapacity-1 {
		t.Error("分支剩余容量应递减")
	}
}

func TestTracker_RebuildFrom(t *testing.T) {
	restaurantID := uuid.New()
	emp := newEmployee("重建", "cook")
	emp.WeeklyCapacity = 2

	assignments := []*model.ShiftAssignment{
		model.NewShiftAssignment(restaurantID, emp.ID, model.Monday, model.ShiftLunch, "cook", "2024-06-10"),
		model.NewShiftAssignment(restaurantID, emp.ID, model.Tuesday, model.ShiftLunch, "cook", "2024-06-10"),
		model.NewShiftAssignment(restaurantID, emp.ID, model.Wednesday, model.ShiftLunch, "cook", "2024-06-10"),
	}
	tracker := RebuildFrom([]*model.Employee{emp}, assignments)

	avail := tracker.Get(emp.ID)
	if avail.Assignments != 3 {
		t.Errorf("重建后班次数 = %d, expected 3", avail.Assignments)
	}
	// 超出容量时剩余钳制为 0
	if avail.Remaining != 0 {
		t.Errorf("剩余容量应钳制为 0, got %d", avail.Remaining)
	}
	if avail.ByRestaurant[restaurantID] != 3 {
		t.Errorf("门店计数 = %d, expected 3", avail.ByRestaurant[restaurantID])
	}
}
