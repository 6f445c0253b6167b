// Package model 定义周排班引擎的核心数据模型
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout 日期格式 (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// Weekday 星期几
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// WeekDays 一周七天（周一为首）
var WeekDays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index 返回星期索引（周一=0 … 周日=6），未知返回 -1
func (d Weekday) Index() int {
	for i, wd := range WeekDays {
		if wd == d {
			return i
		}
	}
	return -1
}

// IsWeekend 是否周末
func (d Weekday) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

// Valid 是否为合法星期值
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// Shift 班段
type Shift string

const (
	ShiftLunch  Shift = "lunch"  // 午市
	ShiftDinner Shift = "dinner" // 晚市
)

// Shifts 一天的两个班段（午市在前）
var Shifts = [2]Shift{ShiftLunch, ShiftDinner}

// Other 返回同一天的另一班段
func (s Shift) Other() Shift {
	if s == ShiftLunch {
		return ShiftDinner
	}
	return ShiftLunch
}

// Valid 是否为合法班段值
func (s Shift) Valid() bool {
	return s == ShiftLunch || s == ShiftDinner
}

// Role 岗位（如 cook / waiter / dishwasher）
type Role string

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WeekStart 计算指定日期所在周的周一
func WeekStart(t time.Time) string {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	return t.AddDate(0, 0, -offset).Format(DateLayout)
}

// DateOnDay 计算周起始日期加星期偏移得到的具体日期
func DateOnDay(weekStart string, day Weekday) (string, error) {
	start, err := time.Parse(DateLayout, weekStart)
	if err != nil {
		return "", fmt.Errorf("解析周起始日期失败: %w", err)
	}
	idx := day.Index()
	if idx < 0 {
		return "", fmt.Errorf("无效的星期值: %s", day)
	}
	return start.AddDate(0, 0, idx).Format(DateLayout), nil
}
