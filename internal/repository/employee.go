// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/canpai/pkg/model"
)

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, name, roles, available_days, available_dates, restaurants, weekly_capacity, created_at, updated_at`

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	now := time.Now()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	rolesJSON, _ := json.Marshal(emp.Roles)
	daysJSON, _ := json.Marshal(emp.AvailableDays)
	datesJSON, _ := json.Marshal(emp.AvailableDates)
	restaurantsJSON, _ := json.Marshal(emp.Restaurants)

	query := `
		INSERT INTO employees (
			id, name, roles, available_days, available_dates,
			restaurants, weekly_capacity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, rolesJSON, daysJSON, datesJSON,
		restaurantsJSON, emp.WeeklyCapacity, emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取员工
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`, employeeColumns)

	return scanEmployee(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	emp.UpdatedAt = time.Now()

	rolesJSON, _ := json.Marshal(emp.Roles)
	daysJSON, _ := json.Marshal(emp.AvailableDays)
	datesJSON, _ := json.Marshal(emp.AvailableDates)
	restaurantsJSON, _ := json.Marshal(emp.Restaurants)

	query := `
		UPDATE employees SET
			name = $2, roles = $3, available_days = $4, available_dates = $5,
			restaurants = $6, weekly_capacity = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, rolesJSON, daysJSON, datesJSON,
		restaurantsJSON, emp.WeeklyCapacity, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// Delete 软删除员工
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// List 查询员工列表
func (r *EmployeeRepository) List(ctx context.Context, filter ListFilter) ([]*model.Employee, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM employees
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, employeeColumns, whereClause, orderBy, orderDir, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, emp)
	}

	return employees, total, rows.Err()
}

// ListAll 查询全部在职员工（排班引擎输入）
func (r *EmployeeRepository) ListAll(ctx context.Context) ([]*model.Employee, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM employees
		WHERE deleted_at IS NULL
		ORDER BY created_at
	`, employeeColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}

// rowScanner 兼容 sql.Row 和 sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row *sql.Row) (*model.Employee, error) {
	emp, err := scanEmployeeRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("员工不存在")
	}
	return emp, err
}

func scanEmployeeRow(s rowScanner) (*model.Employee, error) {
	var emp model.Employee
	var rolesJSON, daysJSON, datesJSON, restaurantsJSON []byte

	err := s.Scan(
		&emp.ID, &emp.Name, &rolesJSON, &daysJSON, &datesJSON,
		&restaurantsJSON, &emp.WeeklyCapacity, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("扫描员工数据失败: %w", err)
	}

	json.Unmarshal(rolesJSON, &emp.Roles)
	json.Unmarshal(daysJSON, &emp.AvailableDays)
	json.Unmarshal(datesJSON, &emp.AvailableDates)
	json.Unmarshal(restaurantsJSON, &emp.Restaurants)

	return &emp, nil
}
