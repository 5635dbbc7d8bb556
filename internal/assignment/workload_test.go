package assignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

func TestRemainingWorkload(t *testing.T) {
	tasks := []*domain.Task{
		{ID: 1, EstimatedHours: 8, Progress: 0, AssignedTo: ptr(1)},
		{ID: 2, EstimatedHours: 8, Progress: 25, AssignedTo: ptr(1)},
		{ID: 3, EstimatedHours: 8, Progress: 100, AssignedTo: ptr(1)},
		{ID: 4, EstimatedHours: 4, Progress: 50, AssignedTo: ptr(2)},
		{ID: 5, EstimatedHours: 4},
	}

	assert.InDelta(t, 14.0, RemainingWorkload(1, tasks), 1e-9)
	assert.InDelta(t, 2.0, RemainingWorkload(2, tasks), 1e-9)
	assert.Zero(t, RemainingWorkload(3, tasks))
}

func TestWorkloadTracker(t *testing.T) {
	tasks := []*domain.Task{
		{ID: 1, EstimatedHours: 10, Progress: 50, AssignedTo: ptr(1)},
		{ID: 2, EstimatedHours: 6, Progress: 0, AssignedTo: ptr(9)}, // 不在成员列表中
	}

	w := NewWorkloadTracker([]int64{1, 2}, tasks)

	assert.InDelta(t, 5.0, w.Load(1), 1e-9)
	assert.Zero(t, w.Load(2))
	assert.InDelta(t, 5.0, w.Max(), 1e-9)
	assert.NotContains(t, w.Snapshot(), int64(9))

	w.Add(2, 3)
	assert.InDelta(t, 3.0, w.Load(2), 1e-9)
	assert.InDelta(t, 5.0, w.Max(), 1e-9)

	w.Add(2, 4)
	assert.InDelta(t, 7.0, w.Load(2), 1e-9)
	assert.InDelta(t, 7.0, w.Max(), 1e-9)
}

func TestWorkloadTrackerEmptyPool(t *testing.T) {
	w := NewWorkloadTracker(nil, nil)

	assert.Zero(t, w.Max())
	assert.Empty(t, w.Snapshot())
}
