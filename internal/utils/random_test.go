package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

func TestGenerateRandomSubset(t *testing.T) {
	arr := []int{1, 2, 3, 4, 5}
	for i := 0; i < 50; i++ {
		subset := GenerateRandomSubset(arr)
		assert.NotEmpty(t, subset)
		assert.LessOrEqual(t, len(subset), len(arr))
		for _, v := range subset {
			assert.Contains(t, arr, v)
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, arr)
	assert.Nil(t, GenerateRandomSubset([]int{}))
}

func TestGenerateRandomEmployee(t *testing.T) {
	for i := 0; i < 20; i++ {
		e := GenerateRandomEmployee("example.com")

		assert.NotEmpty(t, e.Username)
		assert.Equal(t, e.Username+"@example.com", e.Email)

		_, err := domain.NewSkillLevels(e.Profile.Skills)
		require.NoError(t, err)
		_, err = domain.NewPreferenceLevels(e.Profile.Preferences)
		require.NoError(t, err)
	}
}

func TestGenerateRandomTask(t *testing.T) {
	for i := 0; i < 20; i++ {
		task := GenerateRandomTask(7)

		assert.Equal(t, int64(7), task.ProjectID)
		assert.Equal(t, domain.TaskStatusTodo, task.Status)
		assert.GreaterOrEqual(t, task.EstimatedHours, 1.0)
		assert.LessOrEqual(t, task.EstimatedHours, 40.0)
		assert.NotEmpty(t, task.RequiredSkills)
		assert.LessOrEqual(t, len(task.RequiredSkills), 3)
		assert.NoError(t, ValidateRequiredSkills(task.RequiredSkills))
		assert.Nil(t, task.AssignedTo)
	}
}

func TestGenerateRandomAvailability(t *testing.T) {
	monday := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		slots := GenerateRandomAvailability(3, monday)

		require.NotEmpty(t, slots)
		assert.NoError(t, ValidateAvailabilitySlots(slots))
		for _, s := range slots {
			assert.Equal(t, int64(3), s.EmployeeID)
			assert.GreaterOrEqual(t, s.StartTime.Hour(), 9)
			assert.LessOrEqual(t, s.EndTime.Hour(), 18)
			assert.True(t, s.StartTime.Weekday() >= time.Monday && s.StartTime.Weekday() <= time.Friday)
		}
	}
}
