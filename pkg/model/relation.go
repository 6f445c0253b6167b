// Package model 定义周排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// EmployeeConflict 员工互斥关系（无序对）：二人不得出现在同一槽位
type EmployeeConflict struct {
	BaseModel
	EmployeeID1 uuid.UUID `json:"employee_id1" db:"employee_id1"`
	EmployeeID2 uuid.UUID `json:"employee_id2" db:"employee_id2"`
	Reason      string    `json:"reason,omitempty" db:"reason"`
}

// EmployeePreference 员工搭班偏好（无序对），权重范围 [1.0, 2.0]
type EmployeePreference struct {
	BaseModel
	EmployeeID1 uuid.UUID `json:"employee_id1" db:"employee_id1"`
	EmployeeID2 uuid.UUID `json:"employee_id2" db:"employee_id2"`
	Weight      float64   `json:"weight" db:"weight"`
}

// RestaurantPreference 员工对门店的偏好，权重范围 [1.0, 3.0]
// 当前评分公式不消费该数据，仅作为透传保留
type RestaurantPreference struct {
	BaseModel
	EmployeeID   uuid.UUID `json:"employee_id" db:"employee_id"`
	RestaurantID uuid.UUID `json:"restaurant_id" db:"restaurant_id"`
	Weight       float64   `json:"weight" db:"weight"`
}

// ConflictSet 互斥关系邻接结构
// 不变量：插入对称，Add(a,b) 后 Has(a,b) 与 Has(b,a) 均为真
type ConflictSet map[uuid.UUID]map[uuid.UUID]struct{}

// NewConflictSet 创建空互斥集合
func NewConflictSet() ConflictSet {
	return make(ConflictSet)
}

// Add 添加一对互斥关系（双向）
func (c ConflictSet) Add(a, b uuid.UUID) {
	if c[a] == nil {
		c[a] = make(map[uuid.UUID]struct{})
	}
	if c[b] == nil {
		c[b] = make(map[uuid.UUID]struct{})
	}
	c[a][b] = struct{}{}
	c[b][a] = struct{}{}
}

// Has 检查两员工是否互斥
func (c ConflictSet) Has(a, b uuid.UUID) bool {
	_, ok := c[a][b]
	return ok
}

// PreferenceMap 搭班偏好邻接结构（员工 -> 搭档 -> 权重）
// 不变量：插入对称，Add(a,b,w) 后双向权重一致
type PreferenceMap map[uuid.UUID]map[uuid.UUID]float64

// NewPreferenceMap 创建空偏好映射
func NewPreferenceMap() PreferenceMap {
	return make(PreferenceMap)
}

// Add 添加一对搭班偏好（双向）
func (p PreferenceMap) Add(a, b uuid.UUID, weight float64) {
	if p[a] == nil {
		p[a] = make(map[uuid.UUID]float64)
	}
	if p[b] == nil {
		p[b] = make(map[uuid.UUID]float64)
	}
	p[a][b] = weight
	p[b][a] = weight
}

// Weight 返回两员工间的偏好权重，无偏好时返回 0
func (p PreferenceMap) Weight(a, b uuid.UUID) float64 {
	return p[a][b]
}
