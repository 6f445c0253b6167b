package constraint

import (
	"testing"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

func TestScore_FreshEmployee(t *testing.T) {
	restaurantID := uuid.New()
	emp := newEmployee("张三", "cook")
	ctx := newTestContext(model.DefaultOptions(), emp)
	tracker := NewTracker(ctx.Employees)
	slot := Slot{RestaurantID: restaurantID, Day: model.Monday, Shift: model.ShiftLunch}

	// 基准 100 + 剩余容量 5 × 8 = 140
	score := Score(tracker.Get(emp.ID), ctx, slot, nil)
	if score != 140 {
		t.Errorf("空白员工评分 = %v, expected 140", score)
	}
}

func TestScore_BalanceWorkload(t *testing.T) {
	restaurantID := uuid.New()
	busy := newEmployee("忙人", "cook")
	idle := newEmployee("闲人", "cook")
	ctx := newTestContext(model.DefaultOptions(), busy, idle)
	tracker := NewTracker(ctx.Employees)
	slot := Slot{RestaurantID: restaurantID, Day: model.Friday, Shift: model.ShiftLunch}

	var existing []*model.ShiftAssignment
	for _, day := range []model.Weekday{model.Monday, model.Tuesday} {
		a := model.NewShiftAssignment(restaurantID, busy.ID, day, model.ShiftLunch, "cook", ctx.WeekStart)
		tracker.Record(a)
		existing = append(existing, a)
	}

	busyScore := Score(tracker.Get(busy.ID), ctx, slot, existing)
	idleScore := Score(tracker.Get(idle.ID), ctx, slot, existing)
	if idleScore <= busyScore {
		t.Errorf("低于均值的员工评分 (%v) 应高于高于均值者 (%v)", idleScore, busyScore)
	}

	// 关闭平衡后差距应缩小但公平惩罚仍在
	ctx.Options.BalanceWorkload = false
	busyOff := Score(tracker.Get(busy.ID), ctx, slot, existing)
	idleOff := Score(tracker.Get(idle.ID), ctx, slot, existing)
	if idleOff-busyOff >= idleScore-busyScore {
		t.Error("关闭工作量平衡后评分差距应缩小")
	}
}

// TestScore_PreferenceMonotonic 偏好权重越高，与搭档同槽位的评分越高
func TestScore_PreferenceMonotonic(t *testing.T) {
	restaurantID := uuid.New()
	partner := newEmployee("搭档", "cook")
	cand := newEmployee("候选", "cook")
	slot := Slot{RestaurantID: restaurantID, Day: model.Saturday, Shift: model.ShiftDinner}

	scoreWith := func(weight float64) float64 {
		ctx := newTestContext(model.DefaultOptions(), partner, cand)
		if weight > 0 {
			prefs := model.NewPreferenceMap()
			prefs.Add(cand.ID, partner.ID, weight)
			ctx.SetRelations(nil, prefs)
		}
		tracker := NewTracker(ctx.Employees)
		existing := []*model.ShiftAssignment{
			model.NewShiftAssignment(restaurantID, partner.ID, slot.Day, slot.Shift, "cook", ctx.WeekStart),
		}
		return Score(tracker.Get(cand.ID), ctx, slot, existing)
	}

	none, mild, strong := scoreWith(0), scoreWith(1.5), scoreWith(2.0)
	if !(strong > mild && mild > none) {
		t.Errorf("偏好权重单调性被破坏: w=0 → %v, w=1.5 → %v, w=2.0 → %v", none, mild, strong)
	}
	// 权重每超出 1.0 一个单位 +15
	if diff := strong - none; diff != 15 {
		t.Errorf("w=2.0 相对无偏好的加成 = %v, expected 15", diff)
	}
}

func TestScore_ScarceAndSameDay(t *testing.T) {
	restaurantID := uuid.New()
	scarce := newEmployee("稀缺", "cook")
	scarce.WeeklyCapacity = 2
	normal := newEmployee("普通", "cook")
	normal.WeeklyCapacity = 5

	ctx := newTestContext(model.DefaultOptions(), scarce, normal)
	tracker := NewTracker(ctx.Employees)
	slot := Slot{RestaurantID: restaurantID, Day: model.Monday, Shift: model.ShiftLunch}

	if Score(tracker.Get(scarce.ID), ctx, slot, nil) >= Score(tracker.Get(normal.ID), ctx, slot, nil) {
		t.Error("周容量很小的员工应被保留给更难的槽位")
	}

	// 同日已有班次的惩罚
	ctx2 := newTestContext(model.DefaultOptions(), normal)
	ctx2.Options.AvoidSameDayDoubleShift = false
	tracker2 := NewTracker(ctx2.Employees)
	before := Score(tracker2.Get(normal.ID), ctx2, Slot{RestaurantID: restaurantID, Day: model.Tuesday, Shift: model.ShiftDinner}, nil)
	tracker2.Record(model.NewShiftAssignment(restaurantID, normal.ID, model.Tuesday, model.ShiftLunch, "cook", ctx2.WeekStart))
	after := Score(tracker2.Get(normal.ID), ctx2, Slot{RestaurantID: restaurantID, Day: model.Tuesday, Shift: model.ShiftDinner}, nil)
	if after >= before {
		t.Errorf("同日已有班次后评分应下降: %v → %v", before, after)
	}
}

func TestScore_Floor(t *testing.T) {
	restaurantID := uuid.New()
	emp := newEmployee("透支", "cook")
	emp.WeeklyCapacity = 1

	ctx := newTestContext(model.DefaultOptions(), emp)
	slot := Slot{RestaurantID: restaurantID, Day: model.Monday, Shift: model.ShiftLunch}

	// 人为构造极端状态：容量耗尽且累计班次极高
	avail := &Availability{
		Employee:     emp,
		Assignments:  60,
		Remaining:    0,
		ByDay:        map[model.Weekday]int{},
		ByRestaurant: map[uuid.UUID]int{},
	}
	if score := Score(avail, ctx, slot, nil); score != 0 {
		t.Errorf("评分下限应为 0, got %v", score)
	}
}

func TestScore_Continuity(t *testing.T) {
	restaurantID := uuid.New()
	otherID := uuid.New()
	emp := newEmployee("常驻", "cook")
	emp.WeeklyCapacity = 6

	ctx := newTestContext(model.DefaultOptions(), emp)
	ctx.Options.PreferRestaurantContinuity = true
	ctx.Options.AvoidSameDayDoubleShift = false
	tracker := NewTracker(ctx.Employees)
	for _, day := range []model.Weekday{model.Monday, model.Tuesday} {
		tracker.Record(model.NewShiftAssignment(restaurantID, emp.ID, day, model.ShiftLunch, "cook", ctx.WeekStart))
	}

	atHome := Score(tracker.Get(emp.ID), ctx, Slot{RestaurantID: restaurantID, Day: model.Wednesday, Shift: model.ShiftLunch}, nil)
	away := Score(tracker.Get(emp.ID), ctx, Slot{RestaurantID: otherID, Day: model.Wednesday, Shift: model.ShiftLunch}, nil)
	if atHome <= away {
		t.Errorf("连续性偏好开启时常驻门店评分 (%v) 应高于其他门店 (%v)", atHome, away)
	}
}
