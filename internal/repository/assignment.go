// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

// AssignmentRepository 排班结果仓储
type AssignmentRepository struct {
	db TxDB
}

// NewAssignmentRepository 创建排班结果仓储
func NewAssignmentRepository(db TxDB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ReplaceWeek 原子替换某周的全部排班
// 同一事务内先删除该周旧分配再批量写入新分配
func (r *AssignmentRepository) ReplaceWeek(ctx context.Context, weekStart string, assignments []*model.ShiftAssignment) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shift_assignments WHERE week_start = $1`, weekStart); err != nil {
			return fmt.Errorf("清除旧排班失败: %w", err)
		}

		query := `
			INSERT INTO shift_assignments (id, restaurant_id, employee_id, day, shift, role, week_start, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		now := time.Now()
		for _, a := range assignments {
			if a.ID == uuid.Nil {
				a.ID = uuid.New()
			}
			if _, err := tx.ExecContext(ctx, query,
				a.ID, a.RestaurantID, a.EmployeeID, a.Day, a.Shift, a.Role, a.WeekStart, now,
			); err != nil {
				return fmt.Errorf("写入排班失败: %w", err)
			}
		}
		return nil
	})
}

// GetByWeek 查询某周的全部排班
func (r *AssignmentRepository) GetByWeek(ctx context.Context, weekStart string) ([]*model.ShiftAssignment, error) {
	query := `
		SELECT id, restaurant_id, employee_id, day, shift, role, week_start
		FROM shift_assignments
		WHERE week_start = $1
		ORDER BY day, shift, restaurant_id
	`

	rows, err := r.db.QueryContext(ctx, query, weekStart)
	if err != nil {
		return nil, fmt.Errorf("查询排班失败: %w", err)
	}
	defer rows.Close()

	var assignments []*model.ShiftAssignment
	for rows.Next() {
		var a model.ShiftAssignment
		if err := rows.Scan(&a.ID, &a.RestaurantID, &a.EmployeeID, &a.Day, &a.Shift, &a.Role, &a.WeekStart); err != nil {
			return nil, fmt.Errorf("扫描排班数据失败: %w", err)
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}

// DeleteWeek 删除某周的全部排班
func (r *AssignmentRepository) DeleteWeek(ctx context.Context, weekStart string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shift_assignments WHERE week_start = $1`, weekStart); err != nil {
		return fmt.Errorf("删除排班失败: %w", err)
	}
	return nil
}
