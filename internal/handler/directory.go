// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/paiban/canpai/internal/repository"
	"github.com/paiban/canpai/pkg/errors"
	"github.com/paiban/canpai/pkg/logger"
	"github.com/paiban/canpai/pkg/model"
)

// EmployeeDirectory 员工目录存储接口
type EmployeeDirectory interface {
	Create(ctx context.Context, emp *model.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	Update(ctx context.Context, emp *model.Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter repository.ListFilter) ([]*model.Employee, int, error)
}

// RestaurantDirectory 门店目录存储接口
type RestaurantDirectory interface {
	Create(ctx context.Context, rest *model.Restaurant) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)
	Update(ctx context.Context, rest *model.Restaurant) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]*model.Restaurant, error)
}

// RequirementDirectory 班次需求存储接口
type RequirementDirectory interface {
	Upsert(ctx context.Context, req *model.ShiftRequirement) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]*model.ShiftRequirement, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*model.ShiftRequirement, error)
}

// RelationQuerier 关系查询接口
type RelationQuerier interface {
	LoadRestaurantPreferences(ctx context.Context, employeeIDs []uuid.UUID) ([]*model.RestaurantPreference, error)
}

// DirectoryHandler 员工、门店与班次需求的管理处理器
type DirectoryHandler struct {
	employees    EmployeeDirectory
	restaurants  RestaurantDirectory
	requirements RequirementDirectory
	relations    RelationQuerier // 可为 nil（不透出门店偏好）
}

// NewDirectoryHandler 创建管理处理器
func NewDirectoryHandler(employees EmployeeDirectory, restaurants RestaurantDirectory, requirements RequirementDirectory, relations RelationQuerier) *DirectoryHandler {
	return &DirectoryHandler{
		employees:    employees,
		restaurants:  restaurants,
		requirements: requirements,
		relations:    relations,
	}
}

// RestaurantPreferenceOutput 员工门店偏好输出
type RestaurantPreferenceOutput struct {
	RestaurantID string  `json:"restaurant_id"`
	Weight       float64 `json:"weight"`
}

// EmployeeOutput 员工输出
type EmployeeOutput struct {
	ID                    string                       `json:"id"`
	Name                  string                       `json:"name"`
	Roles                 []string                     `json:"roles"`
	AvailableDays         []string                     `json:"available_days,omitempty"`
	AvailableDates        []string                     `json:"available_dates,omitempty"`
	Restaurants           []string                     `json:"restaurants,omitempty"`
	WeeklyCapacity        int                          `json:"weekly_capacity"`
	RestaurantPreferences []RestaurantPreferenceOutput `json:"restaurant_preferences,omitempty"`
}

// EmployeeListResponse 员工列表响应
type EmployeeListResponse struct {
	Total     int              `json:"total"`
	Employees []EmployeeOutput `json:"employees"`
}

// Employees 员工集合端点：GET 列表，POST 创建
func (h *DirectoryHandler) Employees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listEmployees(w, r)
	case http.MethodPost:
		h.createEmployee(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// EmployeeByID 单员工端点：GET 查询，PUT 更新，DELETE 删除
func (h *DirectoryHandler) EmployeeByID(w http.ResponseWriter, r *http.Request) {
	id, appErr := parsePathID(r.URL.Path, "/api/v1/employees/")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	switch r.Method {
	case http.MethodGet:
		emp, err := h.employees.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeNotFound, "员工不存在"))
			return
		}
		respondJSON(w, http.StatusOK, toEmployeeOutput(emp, nil))
	case http.MethodPut:
		var in EmployeeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		in.ID = id.String()
		employees, appErr := buildEmployees([]EmployeeInput{in})
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		if err := h.employees.Update(r.Context(), employees[0]); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新员工失败"))
			return
		}
		respondJSON(w, http.StatusOK, toEmployeeOutput(employees[0], nil))
	case http.MethodDelete:
		if err := h.employees.Delete(r.Context(), id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeNotFound, "员工不存在"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id.String()})
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET、PUT和DELETE方法"))
	}
}

func (h *DirectoryHandler) listEmployees(w http.ResponseWriter, r *http.Request) {
	filter, appErr := parseListFilter(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	employees, total, err := h.employees.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工列表失败"))
		return
	}

	prefsByEmployee := h.loadPreferences(r.Context(), employees)
	outputs := make([]EmployeeOutput, 0, len(employees))
	for _, emp := range employees {
		outputs = append(outputs, toEmployeeOutput(emp, prefsByEmployee[emp.ID]))
	}

	respondJSON(w, http.StatusOK, EmployeeListResponse{Total: total, Employees: outputs})
}

func (h *DirectoryHandler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var in EmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	employees, appErr := buildEmployees([]EmployeeInput{in})
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	if err := h.employees.Create(r.Context(), employees[0]); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建员工失败"))
		return
	}
	respondJSON(w, http.StatusCreated, toEmployeeOutput(employees[0], nil))
}

// loadPreferences 加载员工门店偏好并按员工分组，失败时降级为空
func (h *DirectoryHandler) loadPreferences(ctx context.Context, employees []*model.Employee) map[uuid.UUID][]*model.RestaurantPreference {
	grouped := make(map[uuid.UUID][]*model.RestaurantPreference)
	if h.relations == nil || len(employees) == 0 {
		return grouped
	}

	ids := make([]uuid.UUID, 0, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
	}
	prefs, err := h.relations.LoadRestaurantPreferences(ctx, ids)
	if err != nil {
		logger.WithError(err).Msg("加载门店偏好失败，列表省略偏好")
		return grouped
	}
	for _, p := range prefs {
		grouped[p.EmployeeID] = append(grouped[p.EmployeeID], p)
	}
	return grouped
}

// RestaurantOutput 门店输出
type RestaurantOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RestaurantListResponse 门店列表响应
type RestaurantListResponse struct {
	Total       int                `json:"total"`
	Restaurants []RestaurantOutput `json:"restaurants"`
}

// Restaurants 门店集合端点：GET 列表，POST 创建
func (h *DirectoryHandler) Restaurants(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		restaurants, err := h.restaurants.ListAll(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询门店列表失败"))
			return
		}
		outputs := make([]RestaurantOutput, 0, len(restaurants))
		for _, rest := range restaurants {
			outputs = append(outputs, RestaurantOutput{ID: rest.ID.String(), Name: rest.Name})
		}
		respondJSON(w, http.StatusOK, RestaurantListResponse{Total: len(outputs), Restaurants: outputs})
	case http.MethodPost:
		var in RestaurantInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if in.Name == "" {
			respondError(w, errors.New(errors.CodeInvalidInput, "门店名称不能为空"))
			return
		}
		rest := &model.Restaurant{Name: in.Name}
		if in.ID != "" {
			id, err := uuid.Parse(in.ID)
			if err != nil {
				respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的门店ID格式: "+in.ID))
				return
			}
			rest.ID = id
		}
		if err := h.restaurants.Create(r.Context(), rest); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建门店失败"))
			return
		}
		respondJSON(w, http.StatusCreated, RestaurantOutput{ID: rest.ID.String(), Name: rest.Name})
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// RestaurantByID 单门店端点：GET 查询，PUT 更新，DELETE 删除
func (h *DirectoryHandler) RestaurantByID(w http.ResponseWriter, r *http.Request) {
	id, appErr := parsePathID(r.URL.Path, "/api/v1/restaurants/")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rest, err := h.restaurants.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeNotFound, "门店不存在"))
			return
		}
		respondJSON(w, http.StatusOK, RestaurantOutput{ID: rest.ID.String(), Name: rest.Name})
	case http.MethodPut:
		var in RestaurantInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if in.Name == "" {
			respondError(w, errors.New(errors.CodeInvalidInput, "门店名称不能为空"))
			return
		}
		rest := &model.Restaurant{BaseModel: model.BaseModel{ID: id}, Name: in.Name}
		if err := h.restaurants.Update(r.Context(), rest); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新门店失败"))
			return
		}
		respondJSON(w, http.StatusOK, RestaurantOutput{ID: rest.ID.String(), Name: rest.Name})
	case http.MethodDelete:
		if err := h.restaurants.Delete(r.Context(), id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeNotFound, "门店不存在"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id.String()})
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET、PUT和DELETE方法"))
	}
}

// RequirementOutput 班次需求输出
type RequirementOutput struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurant_id"`
	Day          string          `json:"day"`
	Shift        string          `json:"shift"`
	Requirements []RoleLineInput `json:"requirements"`
}

// RequirementListResponse 班次需求列表响应
type RequirementListResponse struct {
	Total        int                 `json:"total"`
	Requirements []RequirementOutput `json:"requirements"`
}

// Requirements 班次需求集合端点：GET 列表，POST 保存
// 保存以 (门店, 星期, 班段) 为键，重复提交覆盖岗位需求
func (h *DirectoryHandler) Requirements(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var requirements []*model.ShiftRequirement
		var err error
		if rid := r.URL.Query().Get("restaurant_id"); rid != "" {
			restaurantID, parseErr := uuid.Parse(rid)
			if parseErr != nil {
				respondError(w, errors.Wrap(parseErr, errors.CodeInvalidInput, "无效的门店ID格式: "+rid))
				return
			}
			requirements, err = h.requirements.ListByRestaurant(r.Context(), restaurantID)
		} else {
			requirements, err = h.requirements.ListAll(r.Context())
		}
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询班次需求失败"))
			return
		}
		outputs := make([]RequirementOutput, 0, len(requirements))
		for _, req := range requirements {
			outputs = append(outputs, toRequirementOutput(req))
		}
		respondJSON(w, http.StatusOK, RequirementListResponse{Total: len(outputs), Requirements: outputs})
	case http.MethodPost:
		var in RequirementInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		requirements, appErr := buildRequirements([]RequirementInput{in})
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		if err := h.requirements.Upsert(r.Context(), requirements[0]); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存班次需求失败"))
			return
		}
		respondJSON(w, http.StatusOK, toRequirementOutput(requirements[0]))
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// RequirementByID 单需求端点：DELETE 删除
func (h *DirectoryHandler) RequirementByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持DELETE方法"))
		return
	}
	id, appErr := parsePathID(r.URL.Path, "/api/v1/requirements/")
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	if err := h.requirements.Delete(r.Context(), id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeNotFound, "班次需求不存在"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id.String()})
}

// parseListFilter 从查询参数解析分页过滤器
func parseListFilter(r *http.Request) (repository.ListFilter, *errors.AppError) {
	filter := repository.DefaultListFilter()
	q := r.URL.Query()

	if s := q.Get("search"); s != "" {
		filter.Search = s
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return filter, errors.New(errors.CodeInvalidInput, "无效的limit参数: "+v)
		}
		filter = filter.WithLimit(n)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New(errors.CodeInvalidInput, "无效的offset参数: "+v)
		}
		filter = filter.WithOffset(n)
	}
	return filter, nil
}

// parsePathID 从路径后缀解析UUID
func parsePathID(path, prefix string) (uuid.UUID, *errors.AppError) {
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return uuid.Nil, errors.New(errors.CodeInvalidInput, "缺少资源ID")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的资源ID格式: "+raw)
	}
	return id, nil
}

func toEmployeeOutput(emp *model.Employee, prefs []*model.RestaurantPreference) EmployeeOutput {
	roles := make([]string, 0, len(emp.Roles))
	for _, role := range emp.Roles {
		roles = append(roles, string(role))
	}
	days := make([]string, 0, len(emp.AvailableDays))
	for _, day := range emp.AvailableDays {
		days = append(days, string(day))
	}
	restaurants := make([]string, 0, len(emp.Restaurants))
	for _, rid := range emp.Restaurants {
		restaurants = append(restaurants, rid.String())
	}
	prefOutputs := make([]RestaurantPreferenceOutput, 0, len(prefs))
	for _, p := range prefs {
		prefOutputs = append(prefOutputs, RestaurantPreferenceOutput{
			RestaurantID: p.RestaurantID.String(),
			Weight:       p.Weight,
		})
	}

	return EmployeeOutput{
		ID:                    emp.ID.String(),
		Name:                  emp.Name,
		Roles:                 roles,
		AvailableDays:         days,
		AvailableDates:        emp.AvailableDates,
		Restaurants:           restaurants,
		WeeklyCapacity:        emp.WeeklyCapacity,
		RestaurantPreferences: prefOutputs,
	}
}

func toRequirementOutput(req *model.ShiftRequirement) RequirementOutput {
	lines := make([]RoleLineInput, 0, len(req.Requirements))
	for _, line := range req.Requirements {
		lines = append(lines, RoleLineInput{Role: string(line.Role), Count: line.Count})
	}
	return RequirementOutput{
		ID:           req.ID.String(),
		RestaurantID: req.RestaurantID.String(),
		Day:          string(req.Day),
		Shift:        string(req.Shift),
		Requirements: lines,
	}
}
