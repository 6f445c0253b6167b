// Package logger 提供统一的日志框架
package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// SchedulerLogger 排班引擎专用日志器
type SchedulerLogger struct {
	base *zerolog.Logger
}

// NewSchedulerLogger 创建排班引擎日志器
func NewSchedulerLogger() *SchedulerLogger {
	l := Get().With().Str("component", "scheduler").Logger()
	return &SchedulerLogger{base: &l}
}

// StartSchedule 记录排班开始
func (l *SchedulerLogger) StartSchedule(weekStart, solver string, employees, lines int) {
	l.base.Info().
		Str("week_start", weekStart).
		Str("solver", solver).
		Int("employees", employees).
		Int("requirement_lines", lines).
		Msg("开始生成排班")
}

// ScheduleComplete 记录排班完成
func (l *SchedulerLogger) ScheduleComplete(weekStart, solver string, assignments, unfilled int, duration time.Duration) {
	l.base.Info().
		Str("week_start", weekStart).
		Str("solver", solver).
		Int("assignments", assignments).
		Int("unfilled_lines", unfilled).
		Dur("duration", duration).
		Msg("排班生成完成")
}

// UnfilledLine 记录未能完全满足的需求行（警告，非致命）
func (l *SchedulerLogger) UnfilledLine(restaurantID string, day, shift, role string, assigned, required int) {
	l.base.Warn().
		Str("restaurant_id", restaurantID).
		Str("day", day).
		Str("shift", shift).
		Str("role", role).
		Int("assigned", assigned).
		Int("required", required).
		Msg("需求行未完全满足")
}

// Reassignment 记录智能重排
func (l *SchedulerLogger) Reassignment(restaurantID string, day, shift, role string, moved int) {
	l.base.Info().
		Str("restaurant_id", restaurantID).
		Str("day", day).
		Str("shift", shift).
		Str("role", role).
		Int("moved", moved).
		Msg("智能重排补充了关键需求行")
}

// LineSkipped 记录回溯搜索放弃的非关键需求行
func (l *SchedulerLogger) LineSkipped(restaurantID string, day, shift, role string, criticality int) {
	l.base.Warn().
		Str("restaurant_id", restaurantID).
		Str("day", day).
		Str("shift", shift).
		Str("role", role).
		Int("criticality", criticality).
		Msg("回溯搜索跳过非关键需求行")
}

// LocalSearchImprovement 记录局部搜索改进
func (l *SchedulerLogger) LocalSearchImprovement(iteration int, before, after float64) {
	l.base.Info().
		Int("iteration", iteration).
		Float64("score_before", before).
		Float64("score_after", after).
		Msg("局部搜索发现改进交换")
}

// RelationLoadDegraded 记录关系加载失败后的降级
func (l *SchedulerLogger) RelationLoadDegraded(kind string, err error) {
	l.base.Warn().
		Str("kind", kind).
		Err(err).
		Msg("关系加载失败，按空关系集合降级处理")
}
