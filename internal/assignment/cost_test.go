package assignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

func TestWorkloadCost(t *testing.T) {
	w := DefaultWeights()

	assert.Zero(t, w.WorkloadCost(5, 0))
	assert.Zero(t, w.WorkloadCost(0, 10))
	assert.InDelta(t, 1.0, w.WorkloadCost(5, 10), 1e-9)
	assert.InDelta(t, 2.0, w.WorkloadCost(10, 10), 1e-9)
}

func TestSkillCost(t *testing.T) {
	w := DefaultWeights()
	skills := domain.SkillLevels{"Go": 5, "SQL": 2}

	tests := []struct {
		name     string
		required []string
		want     float64
	}{
		{"不需要技能", nil, 0},
		{"完全匹配", []string{"Go"}, 0},
		{"部分匹配", []string{"Go", "SQL"}, 1.5},
		{"完全不匹配", []string{"Rust"}, 5},
		{"大小写敏感", []string{"go"}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, w.SkillCost(tt.required, skills), 1e-9)
		})
	}
}

func TestPreferenceCost(t *testing.T) {
	w := DefaultWeights()
	prefs, err := domain.NewPreferenceLevels(map[string]int{"Backend": 5, "docs": 1})
	assert.NoError(t, err)

	assert.Zero(t, w.PreferenceCost("", prefs))
	assert.Zero(t, w.PreferenceCost("backend", prefs))
	assert.Zero(t, w.PreferenceCost("BACKEND", prefs))
	assert.InDelta(t, 2.4, w.PreferenceCost("docs", prefs), 1e-9)
	assert.InDelta(t, 3.0, w.PreferenceCost("frontend", prefs), 1e-9)
}

func TestCostBounds(t *testing.T) {
	w := DefaultWeights()
	member := &domain.Employee{
		Profile: domain.Profile{
			Skills:      domain.SkillLevels{"Go": 3, "React": 5},
			Preferences: domain.PreferenceLevels{"backend": 2},
		},
	}

	tasks := []*domain.Task{
		{RequiredSkills: []string{"Go"}, Category: "backend"},
		{RequiredSkills: []string{"Go", "React", "Rust"}},
		{Category: "ops"},
		{},
	}

	for _, tk := range tasks {
		for _, load := range []float64{0, 1, 7.5, 20} {
			c := w.Cost(tk, member, load, 20)

			assert.GreaterOrEqual(t, c.Workload, 0.0)
			assert.LessOrEqual(t, c.Workload, w.Workload)
			assert.GreaterOrEqual(t, c.Skill, 0.0)
			assert.LessOrEqual(t, c.Skill, w.Skill)
			assert.GreaterOrEqual(t, c.Preference, 0.0)
			assert.LessOrEqual(t, c.Preference, w.Preference)
			assert.InDelta(t, c.Workload+c.Skill+c.Preference, c.Total, 1e-9)
		}
	}
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	w := DefaultWeights()
	w.Workload = -1
	assert.Error(t, w.Validate())

	w = DefaultWeights()
	w.MaxSkillLevel = 0
	assert.Error(t, w.Validate())
}
