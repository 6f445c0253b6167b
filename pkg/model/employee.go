// Package model 定义周排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// MaxRolesPerEmployee 单个员工最多可担任的岗位数
const MaxRolesPerEmployee = 3

// Employee 员工
type Employee struct {
	BaseModel
	Name string `json:"name" db:"name"`

	// Roles 岗位资质，首位为主岗位，最多 3 个
	Roles []Role `json:"roles" db:"roles"`

	// AvailableDays 每周可用的星期集合，空 = 每天可用
	AvailableDays []Weekday `json:"available_days" db:"available_days"`

	// AvailableDates 特定可用日期 (YYYY-MM-DD)
	// 非空时覆盖 AvailableDays：员工仅在这些具体日期可用
	AvailableDates []string `json:"available_dates" db:"available_dates"`

	// Restaurants 可工作的门店集合，空 = 所有门店
	Restaurants []uuid.UUID `json:"restaurants" db:"restaurants"`

	// WeeklyCapacity 每周可承担的班次数
	WeeklyCapacity int `json:"weekly_capacity" db:"weekly_capacity"`
}

// PrimaryRole 返回主岗位
func (e *Employee) PrimaryRole() Role {
	if len(e.Roles) == 0 {
		return ""
	}
	return e.Roles[0]
}

// HasRole 检查员工是否具备某岗位资质
func (e *Employee) HasRole(role Role) bool {
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WorksAt 检查员工是否可在某门店工作（空集合 = 不限门店）
func (e *Employee) WorksAt(restaurantID uuid.UUID) bool {
	if len(e.Restaurants) == 0 {
		return true
	}
	for _, id := range e.Restaurants {
		if id == restaurantID {
			return true
		}
	}
	return false
}

// AvailableOnDate 检查某具体日期是否在特定可用日期集合内
func (e *Employee) AvailableOnDate(date string) bool {
	for _, d := range e.AvailableDates {
		if d == date {
			return true
		}
	}
	return false
}

// AvailableOnDay 检查某星期是否在每周可用集合内（空集合 = 每天可用）
func (e *Employee) AvailableOnDay(day Weekday) bool {
	if len(e.AvailableDays) == 0 {
		return true
	}
	for _, d := range e.AvailableDays {
		if d == day {
			return true
		}
	}
	return false
}

// Restaurant 门店
type Restaurant struct {
	BaseModel
	Name string `json:"name" db:"name"`
}
