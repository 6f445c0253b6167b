// Package model 定义周排班引擎的核心数据模型
package model

// Options 排班选项
type Options struct {
	// AvoidSameDayDoubleShift 避免同一员工同日午市+晚市连排
	AvoidSameDayDoubleShift bool `json:"avoid_same_day_double_shift"`

	// BalanceWorkload 在员工间平衡工作量
	BalanceWorkload bool `json:"balance_workload"`

	// PreferRestaurantContinuity 偏好同一门店连续排班；关闭时鼓励跨店分散
	PreferRestaurantContinuity bool `json:"prefer_restaurant_continuity"`

	// UseAdvancedAlgorithm 使用难度优先的高级算法
	UseAdvancedAlgorithm bool `json:"use_advanced_algorithm"`

	// UseBacktracking 启用有界回溯搜索
	UseBacktracking bool `json:"use_backtracking"`

	// UseLocalSearch 生成后执行局部搜索改进
	UseLocalSearch bool `json:"use_local_search"`

	// AvoidConflicts 避免互斥员工同槽位
	AvoidConflicts bool `json:"avoid_conflicts"`

	// ConsiderPreferences 评分时考虑搭班偏好
	ConsiderPreferences bool `json:"consider_preferences"`

	// MaxBacktrackDepth 回溯最大递归深度
	MaxBacktrackDepth int `json:"max_backtrack_depth"`

	// MaxLocalSearchIterations 局部搜索最大迭代次数
	MaxLocalSearchIterations int `json:"max_local_search_iterations"`
}

// 选项默认值
const (
	DefaultMaxBacktrackDepth        = 5
	DefaultMaxLocalSearchIterations = 10
)

// DefaultOptions 返回默认排班选项
func DefaultOptions() Options {
	return Options{
		AvoidSameDayDoubleShift:    true,
		BalanceWorkload:            true,
		PreferRestaurantContinuity: false,
		UseAdvancedAlgorithm:       true,
		UseBacktracking:            true,
		UseLocalSearch:             true,
		AvoidConflicts:             true,
		ConsiderPreferences:        true,
		MaxBacktrackDepth:          DefaultMaxBacktrackDepth,
		MaxLocalSearchIterations:   DefaultMaxLocalSearchIterations,
	}
}

// Normalize 将未设置的数值上限回填为默认值
func (o Options) Normalize() Options {
	if o.MaxBacktrackDepth <= 0 {
		o.MaxBacktrackDepth = DefaultMaxBacktrackDepth
	}
	if o.MaxLocalSearchIterations <= 0 {
		o.MaxLocalSearchIterations = DefaultMaxLocalSearchIterations
	}
	return o
}
