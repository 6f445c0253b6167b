// Package constraint 提供排班上下文、运行期可用性状态、
// 资格判定（硬约束）、候选评分（软目标）与需求行难度分析
package constraint

import (
	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

// Slot 槽位：(门店, 星期, 班段) 三元组
type Slot struct {
	RestaurantID uuid.UUID     `json:"restaurant_id"`
	Day          model.Weekday `json:"day"`
	Shift        model.Shift   `json:"shift"`
}

// Context 排班上下文：一次排班调用期间不变的输入快照
// 所有持久化实体由外部存储层拥有，此处仅为只读引用
type Context struct {
	WeekStart    string
	Options      model.Options
	Employees    []*model.Employee
	Restaurants  []*model.Restaurant
	Requirements []*model.ShiftRequirement
	Conflicts    model.ConflictSet
	Preferences  model.PreferenceMap
}

// NewContext 创建排班上下文
func NewContext(weekStart string, opts model.Options) *Context {
	return &Context{
		WeekStart:   weekStart,
		Options:     opts.Normalize(),
		Conflicts:   model.NewConflictSet(),
		Preferences: model.NewPreferenceMap(),
	}
}

// SetEmployees 设置员工快照
func (c *Context) SetEmployees(employees []*model.Employee) {
	c.Employees = employees
}

// SetRestaurants 设置门店快照
func (c *Context) SetRestaurants(restaurants []*model.Restaurant) {
	c.Restaurants = restaurants
}

// SetRequirements 设置需求快照
func (c *Context) SetRequirements(requirements []*model.ShiftRequirement) {
	c.Requirements = requirements
}

// SetRelations 设置互斥与偏好关系
func (c *Context) SetRelations(conflicts model.ConflictSet, preferences model.PreferenceMap) {
	if conflicts != nil {
		c.Conflicts = conflicts
	}
	if preferences != nil {
		c.Preferences = preferences
	}
}

// HasConflict 检查两员工是否互斥
func (c *Context) HasConflict(a, b uuid.UUID) bool {
	return c.Conflicts.Has(a, b)
}

// PreferenceWeight 返回两员工的搭班偏好权重（无偏好为 0）
func (c *Context) PreferenceWeight(a, b uuid.UUID) float64 {
	return c.Preferences.Weight(a, b)
}
