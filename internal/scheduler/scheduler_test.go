package scheduler

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

func newTestDriver(t *testing.T, cfg Config) *Driver {
	t.Helper()

	d, err := NewDriver(cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)
	return d
}

func testRequest(projectID int64, slots []*domain.AvailabilitySlot, ids ...int64) Request {
	return Request{
		Project:       &domain.Project{ID: projectID, Members: members(ids...)},
		Slots:         slots,
		DurationHours: 1,
		Now:           at(13, 10, 0),
		Location:      cst,
	}
}

func TestRunEveryoneFree(t *testing.T) {
	d := newTestDriver(t, DefaultConfig())

	slots := append(fullWeek(1), fullWeek(2)...)
	slots = append(slots, fullWeek(3)...)

	result, err := d.Run(context.Background(), testRequest(7, slots, 1, 2, 3))
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusSuccess, result.Status)
	require.NotNil(t, result.BestSlot)
	assert.InDelta(t, 1.0, result.BestSlot.Fitness, 1e-9)
	assert.Equal(t, 3, result.BestSlot.AttendeeCount)
	assert.Equal(t, 3, result.BestSlot.TotalMembers)
	assert.Equal(t, []int64{1, 2, 3}, result.BestSlot.Attendees)
	assert.Equal(t, DefaultConfig().Generations, result.Generations)

	start := result.BestSlot.Start
	assert.Equal(t, time.Hour, result.BestSlot.End.Sub(start))
	assert.GreaterOrEqual(t, start.Hour(), 9)
	assert.False(t, result.BestSlot.End.After(time.Date(start.Year(), start.Month(), start.Day(), 17, 0, 0, 0, cst)))
	assert.False(t, start.Before(at(10, 0, 0)))
	assert.True(t, start.Before(at(15, 0, 0)))
}

func TestRunDeterministic(t *testing.T) {
	slots := append(fullWeek(1), slot(2, at(11, 9, 0), at(11, 12, 0)))
	slots = append(slots, slot(3, at(12, 13, 0), at(12, 17, 0)))
	req := testRequest(42, slots, 1, 2, 3)

	d := newTestDriver(t, DefaultConfig())
	first, err := d.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := d.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// 并行计算适应度不影响结果
	cfg := DefaultConfig()
	cfg.Workers = 4
	parallel, err := newTestDriver(t, cfg).Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, parallel)
}

func TestRunAttendeeCountMatchesFitness(t *testing.T) {
	slots := append(fullWeek(1), fullWeek(2)...)
	slots = append(slots, slot(3, at(11, 14, 0), at(11, 16, 0)))

	result, err := newTestDriver(t, DefaultConfig()).Run(context.Background(), testRequest(3, slots, 1, 2, 3))
	require.NoError(t, err)

	best := result.BestSlot
	require.NotNil(t, best)
	assert.GreaterOrEqual(t, best.Fitness, 2.0/3.0-1e-9)
	assert.Equal(t, len(best.Attendees), best.AttendeeCount)
	assert.InDelta(t, best.Fitness*3, float64(best.AttendeeCount), 1e-9)
}

func TestRunNobodyAvailable(t *testing.T) {
	result, err := newTestDriver(t, DefaultConfig()).Run(context.Background(), testRequest(5, nil, 1, 2))
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusSuccess, result.Status)
	assert.Zero(t, result.BestSlot.Fitness)
	assert.Zero(t, result.BestSlot.AttendeeCount)
	assert.Empty(t, result.BestSlot.Attendees)
}

func TestRunInvalidInput(t *testing.T) {
	d := newTestDriver(t, DefaultConfig())

	t.Run("没有成员", func(t *testing.T) {
		result, err := d.Run(context.Background(), testRequest(1, nil))
		assert.True(t, domain.IsKind(err, domain.KindInput))
		assert.Equal(t, domain.RunStatusError, result.Status)
		assert.Nil(t, result.BestSlot)
	})

	t.Run("项目不存在", func(t *testing.T) {
		_, err := d.Run(context.Background(), Request{DurationHours: 1})
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})

	for _, hours := range []float64{0, -1, 8.5, 100} {
		req := testRequest(1, nil, 1)
		req.DurationHours = hours
		_, err := d.Run(context.Background(), req)
		assert.True(t, domain.IsKind(err, domain.KindInput), "hours=%v", hours)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestDriver(t, DefaultConfig()).Run(ctx, testRequest(1, fullWeek(1), 1))
	assert.True(t, domain.IsKind(err, domain.KindComputation))
}

func TestDurationMinutes(t *testing.T) {
	m, err := DurationMinutes(1.5)
	require.NoError(t, err)
	assert.Equal(t, 90, m)

	m, err = DurationMinutes(8)
	require.NoError(t, err)
	assert.Equal(t, MaxDurationMinutes, m)

	_, err = DurationMinutes(0.001)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.PopulationSize = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MutationProb = 1.5
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Workers = 0
	assert.Error(t, cfg.Validate())
}
