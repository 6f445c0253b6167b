// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/canpai/internal/metrics"
	"github.com/paiban/canpai/pkg/errors"
	"github.com/paiban/canpai/pkg/logger"
	"github.com/paiban/canpai/pkg/model"
	"github.com/paiban/canpai/pkg/scheduler"
	"github.com/paiban/canpai/pkg/scheduler/optimizer"
	"github.com/paiban/canpai/pkg/scheduler/solver"
	"github.com/paiban/canpai/pkg/stats"
	"github.com/paiban/canpai/pkg/validator"
)

// AssignmentStore 排班结果持久化接口
type AssignmentStore interface {
	ReplaceWeek(ctx context.Context, weekStart string, assignments []*model.ShiftAssignment) error
	GetByWeek(ctx context.Context, weekStart string) ([]*model.ShiftAssignment, error)
	DeleteWeek(ctx context.Context, weekStart string) error
}

// EmployeeSource 员工数据源
type EmployeeSource interface {
	ListAll(ctx context.Context) ([]*model.Employee, error)
}

// RestaurantSource 门店数据源
type RestaurantSource interface {
	ListAll(ctx context.Context) ([]*model.Restaurant, error)
}

// RequirementSource 班次需求数据源
type RequirementSource interface {
	ListAll(ctx context.Context) ([]*model.ShiftRequirement, error)
}

// ScheduleSources 存储中的排班输入数据源
// 生成请求未内联对应数据时作为回退，各字段均可为 nil
type ScheduleSources struct {
	Employees    EmployeeSource
	Restaurants  RestaurantSource
	Requirements RequirementSource
}

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	engine  *scheduler.Engine
	store   AssignmentStore // 可为 nil（不持久化）
	sources ScheduleSources
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(engine *scheduler.Engine, store AssignmentStore, sources ScheduleSources) *ScheduleHandler {
	return &ScheduleHandler{engine: engine, store: store, sources: sources}
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	WeekStart    string             `json:"week_start"` // YYYY-MM-DD，周一
	Employees    []EmployeeInput    `json:"employees"`
	Restaurants  []RestaurantInput  `json:"restaurants"`
	Requirements []RequirementInput `json:"requirements"`
	Options      *model.Options     `json:"options,omitempty"`
	Persist      bool               `json:"persist,omitempty"` // 是否替换该周已有排班
}

// EmployeeInput 员工输入
type EmployeeInput struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Roles          []string `json:"roles"`
	AvailableDays  []string `json:"available_days,omitempty"`
	AvailableDates []string `json:"available_dates,omitempty"`
	Restaurants    []string `json:"restaurants,omitempty"`
	WeeklyCapacity int      `json:"weekly_capacity"`
}

// RestaurantInput 门店输入
type RestaurantInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RequirementInput 需求输入
type RequirementInput struct {
	RestaurantID string          `json:"restaurant_id"`
	Day          string          `json:"day"`
	Shift        string          `json:"shift"`
	Requirements []RoleLineInput `json:"requirements"`
}

// RoleLineInput 岗位需求行输入
type RoleLineInput struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// AssignmentOutput 排班输出
type AssignmentOutput struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Day          string `json:"day"`
	Shift        string `json:"shift"`
	Role         string `json:"role"`
	WeekStart    string `json:"week_start"`
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	Success     bool                  `json:"success"`
	Solver      string                `json:"solver"`
	WeekStart   string                `json:"week_start"`
	Assignments []AssignmentOutput    `json:"assignments"`
	Unfilled    []solver.UnfilledLine `json:"unfilled,omitempty"`
	Statistics  *stats.Report         `json:"statistics"`
	Duration    string                `json:"duration"`
	Persisted   bool                  `json:"persisted"`
}

// Generate 生成一周排班
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	employees, restaurants, requirements, appErr := h.resolveEngineInput(r.Context(), &req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	start := time.Now()
	result, err := h.engine.Generate(r.Context(), employees, restaurants, requirements, req.WeekStart, req.Options)
	if err != nil {
		metrics.RecordScheduleGeneration("unknown", false, time.Since(start))
		respondAnyError(w, err)
		return
	}
	metrics.RecordScheduleGeneration(result.Solver, result.Success, result.Duration)

	report := stats.Compute(result.Assignments, employees, requirements)
	metrics.SetScheduleQuality(req.WeekStart, optimizer.Quality(result.Assignments, requirements))
	metrics.SetSatisfactionRate(req.WeekStart, report.SatisfactionRate)

	persisted := false
	if req.Persist && h.store != nil {
		if err := h.store.ReplaceWeek(r.Context(), req.WeekStart, result.Assignments); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存排班失败"))
			return
		}
		persisted = true
	}

	nameByID := make(map[uuid.UUID]string, len(employees))
	for _, emp := range employees {
		nameByID[emp.ID] = emp.Name
	}
	outputs := toAssignmentOutputs(result.Assignments, nameByID)

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:     result.Success,
		Solver:      result.Solver,
		WeekStart:   req.WeekStart,
		Assignments: outputs,
		Unfilled:    result.Unfilled,
		Statistics:  report,
		Duration:    result.Duration.String(),
		Persisted:   persisted,
	})
}

// ValidateRequest 排班验证请求
type ValidateRequest struct {
	WeekStart    string             `json:"week_start"`
	Employees    []EmployeeInput    `json:"employees"`
	Requirements []RequirementInput `json:"requirements"`
	Assignments  []AssignmentInput  `json:"assignments"`
	Conflicts    [][2]string        `json:"conflicts,omitempty"` // 互斥员工ID对
	Options      *model.Options     `json:"options,omitempty"`
}

// AssignmentInput 排班输入（验证用）
type AssignmentInput struct {
	ID           string `json:"id,omitempty"`
	RestaurantID string `json:"restaurant_id"`
	EmployeeID   string `json:"employee_id"`
	Day          string `json:"day"`
	Shift        string `json:"shift"`
	Role         string `json:"role"`
}

// ValidateResponse 排班验证响应
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Issues []validator.Issue `json:"issues"`
}

// Validate 验证一份排班的结构性问题
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	requirements, appErr := buildRequirements(req.Requirements)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	assignments, appErr := buildAssignments(req.Assignments, req.WeekStart)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	conflicts := model.NewConflictSet()
	for _, pair := range req.Conflicts {
		a, err1 := uuid.Parse(pair[0])
		b, err2 := uuid.Parse(pair[1])
		if err1 != nil || err2 != nil {
			respondError(w, errors.New(errors.CodeInvalidInput, "无效的互斥员工ID对"))
			return
		}
		conflicts.Add(a, b)
	}

	opts := model.DefaultOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	issues := validator.NewScheduleValidator(opts, conflicts).Validate(assignments, employees, requirements)
	respondJSON(w, http.StatusOK, ValidateResponse{
		Valid:  len(issues) == 0,
		Issues: issues,
	})
}

// StatisticsRequest 统计请求
type StatisticsRequest struct {
	WeekStart    string             `json:"week_start"`
	Employees    []EmployeeInput    `json:"employees"`
	Requirements []RequirementInput `json:"requirements"`
	Assignments  []AssignmentInput  `json:"assignments"`
}

// Statistics 计算一份排班的统计报告
func (h *ScheduleHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req StatisticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	requirements, appErr := buildRequirements(req.Requirements)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	assignments, appErr := buildAssignments(req.Assignments, req.WeekStart)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	respondJSON(w, http.StatusOK, stats.Compute(assignments, employees, requirements))
}

// resolveEngineInput 组装引擎输入
// 请求未内联员工、门店或需求时，回退到存储中的在职数据
func (h *ScheduleHandler) resolveEngineInput(ctx context.Context, req *GenerateRequest) ([]*model.Employee, []*model.Restaurant, []*model.ShiftRequirement, *errors.AppError) {
	if req.WeekStart == "" {
		return nil, nil, nil, errors.New(errors.CodeInvalidWeekStart, "缺少周起始日期")
	}

	var employees []*model.Employee
	var appErr *errors.AppError
	switch {
	case len(req.Employees) > 0:
		if employees, appErr = buildEmployees(req.Employees); appErr != nil {
			return nil, nil, nil, appErr
		}
	case h.sources.Employees != nil:
		loaded, err := h.sources.Employees.ListAll(ctx)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "加载员工失败")
		}
		employees = loaded
	}
	if len(employees) == 0 {
		return nil, nil, nil, errors.New(errors.CodeInvalidInput, "员工列表不能为空")
	}

	var restaurants []*model.Restaurant
	switch {
	case len(req.Restaurants) > 0:
		if restaurants, appErr = buildRestaurants(req.Restaurants); appErr != nil {
			return nil, nil, nil, appErr
		}
	case h.sources.Restaurants != nil:
		loaded, err := h.sources.Restaurants.ListAll(ctx)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "加载门店失败")
		}
		restaurants = loaded
	}

	var requirements []*model.ShiftRequirement
	switch {
	case len(req.Requirements) > 0:
		if requirements, appErr = buildRequirements(req.Requirements); appErr != nil {
			return nil, nil, nil, appErr
		}
	case h.sources.Requirements != nil:
		loaded, err := h.sources.Requirements.ListAll(ctx)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "加载班次需求失败")
		}
		requirements = loaded
	}
	if len(requirements) == 0 {
		return nil, nil, nil, errors.New(errors.CodeInvalidInput, "需求列表不能为空")
	}

	return employees, restaurants, requirements, nil
}

// WeekResponse 已保存排班查询响应
type WeekResponse struct {
	WeekStart   string             `json:"week_start"`
	Total       int                `json:"total"`
	Assignments []AssignmentOutput `json:"assignments"`
}

// Week 查询或删除已保存的一周排班
func (h *ScheduleHandler) Week(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, errors.New(errors.CodeDatabaseError, "未启用持久化存储"))
		return
	}
	weekStart := r.URL.Query().Get("week_start")
	if weekStart == "" {
		respondError(w, errors.New(errors.CodeInvalidWeekStart, "缺少周起始日期"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		assignments, err := h.store.GetByWeek(r.Context(), weekStart)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班失败"))
			return
		}
		outputs := toAssignmentOutputs(assignments, h.employeeNames(r.Context()))
		respondJSON(w, http.StatusOK, WeekResponse{
			WeekStart:   weekStart,
			Total:       len(outputs),
			Assignments: outputs,
		})
	case http.MethodDelete:
		if err := h.store.DeleteWeek(r.Context(), weekStart); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除排班失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"deleted":    true,
			"week_start": weekStart,
		})
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和DELETE方法"))
	}
}

// employeeNames 加载员工姓名映射，加载失败时降级为空映射
func (h *ScheduleHandler) employeeNames(ctx context.Context) map[uuid.UUID]string {
	nameByID := make(map[uuid.UUID]string)
	if h.sources.Employees == nil {
		return nameByID
	}
	employees, err := h.sources.Employees.ListAll(ctx)
	if err != nil {
		logger.WithError(err).Msg("加载员工姓名失败，输出省略姓名")
		return nameByID
	}
	for _, emp := range employees {
		nameByID[emp.ID] = emp.Name
	}
	return nameByID
}

func toAssignmentOutputs(assignments []*model.ShiftAssignment, nameByID map[uuid.UUID]string) []AssignmentOutput {
	outputs := make([]AssignmentOutput, 0, len(assignments))
	for _, a := range assignments {
		outputs = append(outputs, AssignmentOutput{
			ID:           a.ID.String(),
			RestaurantID: a.RestaurantID.String(),
			EmployeeID:   a.EmployeeID.String(),
			EmployeeName: nameByID[a.EmployeeID],
			Day:          string(a.Day),
			Shift:        string(a.Shift),
			Role:         string(a.Role),
			WeekStart:    a.WeekStart,
		})
	}
	return outputs
}

func buildRestaurants(inputs []RestaurantInput) ([]*model.Restaurant, *errors.AppError) {
	restaurants := make([]*model.Restaurant, 0, len(inputs))
	for _, in := range inputs {
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的门店ID格式: "+in.ID)
		}
		restaurants = append(restaurants, &model.Restaurant{
			BaseModel: model.BaseModel{ID: id},
			Name:      in.Name,
		})
	}
	return restaurants, nil
}

func buildEmployees(inputs []EmployeeInput) ([]*model.Employee, *errors.AppError) {
	employees := make([]*model.Employee, 0, len(inputs))
	for _, in := range inputs {
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+in.ID)
		}
		if len(in.Roles) == 0 || len(in.Roles) > model.MaxRolesPerEmployee {
			return nil, errors.New(errors.CodeInvalidInput, "员工岗位数必须在1到3之间: "+in.Name)
		}

		roles := make([]model.Role, 0, len(in.Roles))
		for _, r := range in.Roles {
			roles = append(roles, model.Role(r))
		}
		days := make([]model.Weekday, 0, len(in.AvailableDays))
		for _, d := range in.AvailableDays {
			day := model.Weekday(d)
			if !day.Valid() {
				return nil, errors.New(errors.CodeInvalidInput, "无效的星期: "+d)
			}
			days = append(days, day)
		}
		restaurantIDs := make([]uuid.UUID, 0, len(in.Restaurants))
		for _, rid := range in.Restaurants {
			parsed, err := uuid.Parse(rid)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的门店ID格式: "+rid)
			}
			restaurantIDs = append(restaurantIDs, parsed)
		}

		employees = append(employees, &model.Employee{
			BaseModel:      model.BaseModel{ID: id},
			Name:           in.Name,
			Roles:          roles,
			AvailableDays:  days,
			AvailableDates: in.AvailableDates,
			Restaurants:    restaurantIDs,
			WeeklyCapacity: in.WeeklyCapacity,
		})
	}
	return employees, nil
}

func buildRequirements(inputs []RequirementInput) ([]*model.ShiftRequirement, *errors.AppError) {
	requirements := make([]*model.ShiftRequirement, 0, len(inputs))
	for _, in := range inputs {
		id, err := uuid.Parse(in.RestaurantID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的门店ID格式: "+in.RestaurantID)
		}
		day := model.Weekday(in.Day)
		if !day.Valid() {
			return nil, errors.New(errors.CodeInvalidInput, "无效的星期: "+in.Day)
		}
		shift := model.Shift(in.Shift)
		if !shift.Valid() {
			return nil, errors.New(errors.CodeInvalidInput, "无效的班段: "+in.Shift)
		}

		lines := make([]model.RoleRequirement, 0, len(in.Requirements))
		for _, line := range in.Requirements {
			if line.Count <= 0 {
				return nil, errors.New(errors.CodeInvalidInput, "岗位需求人数必须为正数")
			}
			lines = append(lines, model.RoleRequirement{
				Role:  model.Role(line.Role),
				Count: line.Count,
			})
		}

		requirements = append(requirements, &model.ShiftRequirement{
			BaseModel:    model.BaseModel{ID: uuid.New()},
			RestaurantID: id,
			Day:          day,
			Shift:        shift,
			Requirements: lines,
		})
	}
	return requirements, nil
}

func buildAssignments(inputs []AssignmentInput, weekStart string) ([]*model.ShiftAssignment, *errors.AppError) {
	assignments := make([]*model.ShiftAssignment, 0, len(inputs))
	for _, in := range inputs {
		restID, err := uuid.Parse(in.RestaurantID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的门店ID格式: "+in.RestaurantID)
		}
		empID, err := uuid.Parse(in.EmployeeID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+in.EmployeeID)
		}
		day := model.Weekday(in.Day)
		if !day.Valid() {
			return nil, errors.New(errors.CodeInvalidInput, "无效的星期: "+in.Day)
		}
		shift := model.Shift(in.Shift)
		if !shift.Valid() {
			return nil, errors.New(errors.CodeInvalidInput, "无效的班段: "+in.Shift)
		}

		a := model.NewShiftAssignment(restID, empID, day, shift, model.Role(in.Role), weekStart)
		if in.ID != "" {
			parsed, err := uuid.Parse(in.ID)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的排班ID格式: "+in.ID)
			}
			a.ID = parsed
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}

// respondAnyError 把任意错误映射为统一错误响应
func respondAnyError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		respondError(w, appErr)
		return
	}
	logger.WithError(err).Msg("排班请求处理失败")
	respondError(w, errors.Wrap(err, errors.CodeInternal, "内部错误"))
}
