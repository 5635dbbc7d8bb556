package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateProgress(t *testing.T) {
	for _, p := range AllowedProgress {
		assert.NoError(t, ValidateProgress(p))
	}
	for _, p := range []int32{-1, 1, 30, 101} {
		assert.True(t, IsKind(ValidateProgress(p), KindInput))
	}
}

func TestTask(t *testing.T) {
	id := int64(3)
	task := &Task{EstimatedHours: 8, Progress: 25, Status: TaskStatusInProgress}

	assert.False(t, task.IsAssigned())
	task.AssignedTo = &id
	assert.True(t, task.IsAssigned())
	assert.True(t, task.IsAssignedTo(3))
	assert.False(t, task.IsAssignedTo(4))

	assert.InDelta(t, 6.0, task.RemainingHours(), 1e-9)
	task.Progress = 100
	assert.Zero(t, task.RemainingHours())

	assert.False(t, task.IsTerminal())
	task.Status = TaskStatusDone
	assert.True(t, task.IsTerminal())
}

func TestAvailabilitySlot(t *testing.T) {
	start := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	s := &AvailabilitySlot{StartTime: start, EndTime: start.Add(2 * time.Hour)}

	assert.NoError(t, s.Validate())
	assert.True(t, s.Contains(start, start.Add(2*time.Hour)))
	assert.True(t, s.Contains(start.Add(30*time.Minute), start.Add(time.Hour)))
	assert.False(t, s.Contains(start.Add(time.Hour), start.Add(3*time.Hour)))

	s.EndTime = start
	assert.True(t, IsKind(s.Validate(), KindInput))
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, KindComputation, "计算失败")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindComputation, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.False(t, IsKind(nil, KindInternal))
	assert.Equal(t, KindNotFound, KindOf(NotFound("项目", 1)))
}
