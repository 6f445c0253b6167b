// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/paiban/canpai/pkg/model"
)

// RelationRepository 员工互斥与偏好关系仓储
// 实现排班引擎的 RelationSource 接口
type RelationRepository struct {
	db DB
}

// NewRelationRepository 创建关系仓储
func NewRelationRepository(db DB) *RelationRepository {
	return &RelationRepository{db: db}
}

// LoadConflicts 加载触及指定员工的全部互斥对，构建双向集合
func (r *RelationRepository) LoadConflicts(ctx context.Context, employeeIDs []uuid.UUID) (model.ConflictSet, error) {
	conflicts := model.NewConflictSet()
	if len(employeeIDs) == 0 {
		return conflicts, nil
	}

	query := `
		SELECT employee_id1, employee_id2
		FROM employee_conflicts
		WHERE employee_id1 = ANY($1) OR employee_id2 = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(employeeIDs))
	if err != nil {
		return nil, fmt.Errorf("查询互斥关系失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a, b uuid.UUID
		if err := rows.Scan(&a, &b); err != nil {
			return nil, fmt.Errorf("扫描互斥关系失败: %w", err)
		}
		conflicts.Add(a, b)
	}
	return conflicts, rows.Err()
}

// LoadPreferences 加载触及指定员工的全部搭档偏好，构建双向映射
func (r *RelationRepository) LoadPreferences(ctx context.Context, employeeIDs []uuid.UUID) (model.PreferenceMap, error) {
	preferences := model.NewPreferenceMap()
	if len(employeeIDs) == 0 {
		return preferences, nil
	}

	query := `
		SELECT employee_id1, employee_id2, weight
		FROM employee_preferences
		WHERE employee_id1 = ANY($1) OR employee_id2 = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(employeeIDs))
	if err != nil {
		return nil, fmt.Errorf("查询偏好关系失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a, b uuid.UUID
		var weight float64
		if err := rows.Scan(&a, &b, &weight); err != nil {
			return nil, fmt.Errorf("扫描偏好关系失败: %w", err)
		}
		preferences.Add(a, b, weight)
	}
	return preferences, rows.Err()
}

// LoadRestaurantPreferences 加载员工对门店的偏好
// 当前排班评分不消费门店偏好，仅供查询接口透出
func (r *RelationRepository) LoadRestaurantPreferences(ctx context.Context, employeeIDs []uuid.UUID) ([]*model.RestaurantPreference, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT employee_id, restaurant_id, weight
		FROM restaurant_preferences
		WHERE employee_id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(employeeIDs))
	if err != nil {
		return nil, fmt.Errorf("查询门店偏好失败: %w", err)
	}
	defer rows.Close()

	var prefs []*model.RestaurantPreference
	for rows.Next() {
		var p model.RestaurantPreference
		if err := rows.Scan(&p.EmployeeID, &p.RestaurantID, &p.Weight); err != nil {
			return nil, fmt.Errorf("扫描门店偏好失败: %w", err)
		}
		prefs = append(prefs, &p)
	}
	return prefs, rows.Err()
}
