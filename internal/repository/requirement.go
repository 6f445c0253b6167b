// Package repository 提供数据访问层
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

// RequirementRepository 班次需求仓储
type RequirementRepository struct {
	db DB
}

// NewRequirementRepository 创建班次需求仓储
func NewRequirementRepository(db DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// Upsert 创建或更新某门店某天某班段的岗位需求
// 以 (restaurant_id, day, shift) 唯一
func (r *RequirementRepository) Upsert(ctx context.Context, req *model.ShiftRequirement) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	reqsJSON, _ := json.Marshal(req.Requirements)

	query := `
		INSERT INTO shift_requirements (id, restaurant_id, day, shift, requirements, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (restaurant_id, day, shift)
		DO UPDATE SET requirements = EXCLUDED.requirements, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.RestaurantID, req.Day, req.Shift, reqsJSON, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存班次需求失败: %w", err)
	}
	return nil
}

// Delete 删除班次需求
func (r *RequirementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shift_requirements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除班次需求失败: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("班次需求不存在")
	}
	return nil
}

// ListByRestaurant 查询某门店的全部班次需求
func (r *RequirementRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*model.ShiftRequirement, error) {
	query := `
		SELECT id, restaurant_id, day, shift, requirements, created_at, updated_at
		FROM shift_requirements
		WHERE restaurant_id = $1
		ORDER BY created_at
	`
	return r.queryRequirements(ctx, query, restaurantID)
}

// ListAll 查询全部班次需求（排班引擎输入）
func (r *RequirementRepository) ListAll(ctx context.Context) ([]*model.ShiftRequirement, error) {
	query := `
		SELECT id, restaurant_id, day, shift, requirements, created_at, updated_at
		FROM shift_requirements
		ORDER BY created_at
	`
	return r.queryRequirements(ctx, query)
}

func (r *RequirementRepository) queryRequirements(ctx context.Context, query string, args ...interface{}) ([]*model.ShiftRequirement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询班次需求失败: %w", err)
	}
	defer rows.Close()

	var requirements []*model.ShiftRequirement
	for rows.Next() {
		var req model.ShiftRequirement
		var reqsJSON []byte
		if err := rows.Scan(&req.ID, &req.RestaurantID, &req.Day, &req.Shift, &reqsJSON, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描班次需求失败: %w", err)
		}
		json.Unmarshal(reqsJSON, &req.Requirements)
		requirements = append(requirements, &req)
	}
	return requirements, rows.Err()
}
