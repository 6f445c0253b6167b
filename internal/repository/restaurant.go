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

// RestaurantRepository 门店仓储
type RestaurantRepository struct {
	db DB
}

// NewRestaurantRepository 创建门店仓储
func NewRestaurantRepository(db DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// Create 创建门店
func (r *RestaurantRepository) Create(ctx context.Context, rest *model.Restaurant) error {
	if rest.ID == uuid.Nil {
		rest.ID = uuid.New()
	}
	now := time.Now()
	rest.CreatedAt = now
	rest.UpdatedAt = now

	query := `
		INSERT INTO restaurants (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.ExecContext(ctx, query, rest.ID, rest.Name, rest.CreatedAt, rest.UpdatedAt); err != nil {
		return fmt.Errorf("创建门店失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取门店
func (r *RestaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM restaurants
		WHERE id = $1 AND deleted_at IS NULL
	`

	var rest model.Restaurant
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rest.ID, &rest.Name, &rest.CreatedAt, &rest.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("门店不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("查询门店失败: %w", err)
	}
	return &rest, nil
}

// Update 更新门店
func (r *RestaurantRepository) Update(ctx context.Context, rest *model.Restaurant) error {
	rest.UpdatedAt = time.Now()

	query := `UPDATE restaurants SET name = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, rest.ID, rest.Name, rest.UpdatedAt)
	if err != nil {
		return fmt.Errorf("更新门店失败: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("门店不存在")
	}
	return nil
}

// Delete 软删除门店
func (r *RestaurantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE restaurants SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除门店失败: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("门店不存在")
	}
	return nil
}

// ListAll 查询全部门店
func (r *RestaurantRepository) ListAll(ctx context.Context) ([]*model.Restaurant, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM restaurants
		WHERE deleted_at IS NULL
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询门店失败: %w", err)
	}
	defer rows.Close()

	var restaurants []*model.Restaurant
	for rows.Next() {
		var rest model.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描门店数据失败: %w", err)
		}
		restaurants = append(restaurants, &rest)
	}
	return restaurants, rows.Err()
}
