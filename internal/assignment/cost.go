package assignment

import (
	"errors"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

// Weights 代价函数的权重
// 技能和偏好的权重大于工作量，优先保证匹配度而不是负载均衡
type Weights struct {
	Workload           float64 `json:"workload"`
	Skill              float64 `json:"skill"`
	Preference         float64 `json:"preference"`
	MaxSkillLevel      int     `json:"maxSkillLevel"`
	MaxPreferenceLevel int     `json:"maxPreferenceLevel"`
}

func DefaultWeights() Weights {
	return Weights{
		Workload:           2,
		Skill:              5,
		Preference:         3,
		MaxSkillLevel:      domain.MaxSkillLevel,
		MaxPreferenceLevel: domain.MaxPreferenceLevel,
	}
}

func (w Weights) Validate() error {
	if w.Workload < 0 || w.Skill < 0 || w.Preference < 0 {
		return errors.New("代价权重不能为负数")
	}
	if w.MaxSkillLevel <= 0 || w.MaxPreferenceLevel <= 0 {
		return errors.New("技能和偏好的最高等级必须大于 0")
	}
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// WorkloadCost 工作量越接近当前最大值代价越高，最大值为 0 时没有代价
func (w Weights) WorkloadCost(load, maxLoad float64) float64 {
	if maxLoad <= 0 {
		return 0
	}
	return clamp01(load/maxLoad) * w.Workload
}

// SkillCost 技能不匹配的代价，任务不需要技能时视为完全匹配
func (w Weights) SkillCost(required []string, skills domain.SkillLevels) float64 {
	if len(required) == 0 {
		return 0
	}

	raw := 0
	for _, skill := range required {
		raw += skills.Level(skill)
	}
	normalized := float64(raw) / float64(len(required)*w.MaxSkillLevel)

	return (1 - clamp01(normalized)) * w.Skill
}

// PreferenceCost 偏好不匹配的代价，任务没有类别时视为完全匹配
func (w Weights) PreferenceCost(category string, prefs domain.PreferenceLevels) float64 {
	category = domain.NormalizeCategory(category)
	if category == "" {
		return 0
	}

	normalized := float64(prefs.Level(category)) / float64(w.MaxPreferenceLevel)
	return (1 - clamp01(normalized)) * w.Preference
}

// Cost 计算把任务分配给成员的总代价
func (w Weights) Cost(task *domain.Task, member *domain.Employee, load, maxLoad float64) domain.CostBreakdown {
	c := domain.CostBreakdown{
		Workload:   w.WorkloadCost(load, maxLoad),
		Skill:      w.SkillCost(task.RequiredSkills, member.Profile.Skills),
		Preference: w.PreferenceCost(task.Category, member.Profile.Preferences),
	}
	c.Total = c.Workload + c.Skill + c.Preference
	return c
}
