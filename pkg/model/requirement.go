// Package model 定义周排班引擎的核心数据模型
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// RoleRequirement 岗位需求行：某槽位内单个岗位的需求人数
type RoleRequirement struct {
	Role  Role `json:"role"`
	Count int  `json:"count"` // 非负
}

// ShiftRequirement 班次需求：(门店, 星期, 班段) 槽位到岗位需求列表的映射
// 同一 (门店, 星期, 班段) 三元组在一份需求集合中唯一
type ShiftRequirement struct {
	BaseModel
	RestaurantID uuid.UUID         `json:"restaurant_id" db:"restaurant_id"`
	Day          Weekday           `json:"day" db:"day"`
	Shift        Shift             `json:"shift" db:"shift"`
	Requirements []RoleRequirement `json:"requirements" db:"requirements"`
}

// ShiftAssignment 排班分配：引擎输出的最小单元
type ShiftAssignment struct {
	ID           uuid.UUID `json:"id" db:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id" db:"restaurant_id"`
	EmployeeID   uuid.UUID `json:"employee_id" db:"employee_id"`
	Day          Weekday   `json:"day" db:"day"`
	Shift        Shift     `json:"shift" db:"shift"`
	Role         Role      `json:"role" db:"role"`
	WeekStart    string    `json:"week_start" db:"week_start"` // YYYY-MM-DD（周一）
}

// NewShiftAssignment 创建排班分配
func NewShiftAssignment(restaurantID, employeeID uuid.UUID, day Weekday, shift Shift, role Role, weekStart string) *ShiftAssignment {
	return &ShiftAssignment{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		EmployeeID:   employeeID,
		Day:          day,
		Shift:        shift,
		Role:         role,
		WeekStart:    weekStart,
	}
}

// Key 返回分配的确定性复合键 (门店-星期-班段-员工-周)
func (a *ShiftAssignment) Key() string {
	return fmt.Sprintf("%s-%s-%s-%s-%s", a.RestaurantID, a.Day, a.Shift, a.EmployeeID, a.WeekStart)
}

// SameSlot 检查两个分配是否属于同一 (门店, 星期, 班段) 槽位
func (a *ShiftAssignment) SameSlot(other *ShiftAssignment) bool {
	return a.RestaurantID == other.RestaurantID && a.Day == other.Day && a.Shift == other.Shift
}
