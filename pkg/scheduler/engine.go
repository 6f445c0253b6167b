// Package scheduler 排班引擎对外门面
// 组装约束上下文、选择求解器并执行可选的局部搜索优化
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/paiban/canpai/pkg/errors"
	"github.com/paiban/canpai/pkg/logger"
	"github.com/paiban/canpai/pkg/model"
	"github.com/paiban/canpai/pkg/scheduler/constraint"
	"github.com/paiban/canpai/pkg/scheduler/optimizer"
	"github.com/paiban/canpai/pkg/scheduler/solver"
)

// RelationSource 互斥与偏好关系的加载接口
// 加载失败不会中止排班，引擎按空关系集合降级处理
type RelationSource interface {
	LoadConflicts(ctx context.Context, employeeIDs []uuid.UUID) (model.ConflictSet, error)
	LoadPreferences(ctx context.Context, employeeIDs []uuid.UUID) (model.PreferenceMap, error)
}

// Engine 排班引擎
type Engine struct {
	relations RelationSource
	log       *logger.SchedulerLogger
}

// NewEngine 创建排班引擎，relations 可为 nil（视为无关系数据）
func NewEngine(relations RelationSource) *Engine {
	return &Engine{
		relations: relations,
		log:       logger.NewSchedulerLogger(),
	}
}

// Generate 为指定周生成排班
// weekStart 必须是 YYYY-MM-DD 格式的周一日期；opts 为 nil 时使用默认选项
func (e *Engine) Generate(ctx context.Context, employees []*model.Employee, restaurants []*model.Restaurant, requirements []*model.ShiftRequirement, weekStart string, opts *model.Options) (*solver.Result, error) {
	if _, err := time.Parse(model.DateLayout, weekStart); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidWeekStart, "周起始日期格式无效").
			WithDetails(weekStart).WithCause(err)
	}

	options := model.DefaultOptions()
	if opts != nil {
		options = *opts
	}

	sc := constraint.NewContext(weekStart, options)
	sc.SetEmployees(employees)
	sc.SetRestaurants(restaurants)
	sc.SetRequirements(requirements)
	sc.SetRelations(e.loadRelations(ctx, employees, options))

	result, err := e.solve(ctx, sc, options)
	if err != nil {
		return nil, err
	}

	if options.UseLocalSearch && len(result.Assignments) > 0 {
		refined, err := optimizer.NewLocalSearch(options.MaxLocalSearchIterations).Refine(ctx, sc, result.Assignments)
		if err != nil {
			return nil, err
		}
		result.Assignments = refined
	}
	return result, nil
}

// solve 按选项挑选求解器，回溯失败时降级到难度优先贪心
func (e *Engine) solve(ctx context.Context, sc *constraint.Context, options model.Options) (*solver.Result, error) {
	if !options.UseAdvancedAlgorithm {
		return solver.NewGreedySolver().Solve(ctx, sc)
	}

	if options.UseBacktracking {
		result, err := solver.NewBacktrackingSolver(options.MaxBacktrackDepth).Solve(ctx, sc)
		if err != nil {
			return nil, err
		}
		if result.Success {
			return result, nil
		}
		logger.Warn().
			Str("week_start", sc.WeekStart).
			Msg("回溯搜索未找到可行解，降级到难度优先贪心")
		fallback, err := solver.NewAdvancedSolver().Solve(ctx, sc)
		if err != nil {
			return nil, err
		}
		fallback.Solver = result.Solver + "->" + fallback.Solver
		return fallback, nil
	}

	return solver.NewAdvancedSolver().Solve(ctx, sc)
}

// loadRelations 加载互斥与偏好关系，任一失败按空集合降级
func (e *Engine) loadRelations(ctx context.Context, employees []*model.Employee, options model.Options) (model.ConflictSet, model.PreferenceMap) {
	conflicts := model.NewConflictSet()
	preferences := model.NewPreferenceMap()
	if e.relations == nil || (!options.AvoidConflicts && !options.ConsiderPreferences) {
		return conflicts, preferences
	}

	ids := make([]uuid.UUID, 0, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
	}

	if options.AvoidConflicts {
		loaded, err := e.relations.LoadConflicts(ctx, ids)
		if err != nil {
			e.log.RelationLoadDegraded("conflicts", err)
		} else if loaded != nil {
			conflicts = loaded
		}
	}
	if options.ConsiderPreferences {
		loaded, err := e.relations.LoadPreferences(ctx, ids)
		if err != nil {
			e.log.RelationLoadDegraded("preferences", err)
		} else if loaded != nil {
			preferences = loaded
		}
	}
	return conflicts, preferences
}
