// Package constraint 排班上下文与约束判定
package constraint

import (
	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

// Availability 员工运行期可用性状态
// 每次排班运行开始时重建，仅归该次运行所有，绝不持久化
type Availability struct {
	Employee     *model.Employee
	Assignments  int                   // 本周已分配班次数
	Remaining    int                   // 剩余可分配班次数
	ByDay        map[model.Weekday]int // 按星期的已分配计数
	ByRestaurant map[uuid.UUID]int     // 按门店的已分配计数
}

// clone 深拷贝单个员工状态
func (a *Availability) clone() *Availability {
	byDay := make(map[model.Weekday]int, len(a.ByDay))
	for k, v := range a.ByDay {
		byDay[k] = v
	}
	byRest := make(map[uuid.UUID]int, len(a.ByRestaurant))
	for k, v := range a.ByRestaurant {
		byRest[k] = v
	}
	return &Availability{
		Employee:     a.Employee,
		Assignments:  a.Assignments,
		Remaining:    a.Remaining,
		ByDay:        byDay,
		ByRestaurant: byRest,
	}
}

// Tracker 全员运行期状态追踪器
// 保持员工输入顺序迭代，保证排班结果确定性
type Tracker struct {
	order []uuid.UUID
	byID  map[uuid.UUID]*Availability
}

// NewTracker 按员工快照创建全新状态追踪器
func NewTracker(employees []*model.Employee) *Tracker {
	t := &Tracker{
		order: make([]uuid.UUID, 0, len(employees)),
		byID:  make(map[uuid.UUID]*Availability, len(employees)),
	}
	for _, emp := range employees {
		t.order = append(t.order, emp.ID)
		t.byID[emp.ID] = &Availability{
			Employee:     emp,
			Remaining:    emp.WeeklyCapacity,
			ByDay:        make(map[model.Weekday]int),
			ByRestaurant: make(map[uuid.UUID]int),
		}
	}
	return t
}

// Get 获取单个员工状态
func (t *Tracker) Get(id uuid.UUID) *Availability {
	return t.byID[id]
}

// All 按输入顺序返回全部员工状态
func (t *Tracker) All() []*Availability {
	out := make([]*Availability, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// Clone 深拷贝追踪器
// 回溯搜索的每个分支在克隆上试探，被拒分支不会污染共享状态
func (t *Tracker) Clone() *Tracker {
	clone := &Tracker{
		order: make([]uuid.UUID, len(t.order)),
		byID:  make(map[uuid.UUID]*Availability, len(t.byID)),
	}
	copy(clone.order, t.order)
	for id, avail := range t.byID {
		clone.byID[id] = avail.clone()
	}
	return clone
}

// Record 将一条分配记入员工计数器
func (t *Tracker) Record(a *model.ShiftAssignment) {
	avail := t.byID[a.EmployeeID]
	if avail == nil {
		return
	}
	avail.Assignments++
	avail.Remaining--
	avail.ByDay[a.Day]++
	avail.ByRestaurant[a.RestaurantID]++
}

// RebuildFrom 依据既有分配列表重建状态（局部搜索使用）
func RebuildFrom(employees []*model.Employee, assignments []*model.ShiftAssignment) *Tracker {
	t := NewTracker(employees)
	for _, a := range assignments {
		t.Record(a)
	}
	// 容量不出现负值
	for _, avail := range t.byID {
		if avail.Remaining < 0 {
			avail.Remaining = 0
		}
	}
	return t
}
