package assignment

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

var cst = time.FixedZone("CST", 8*3600)

// 2025-11-13 周四 10:00
var fixedNow = time.Date(2025, 11, 13, 10, 0, 0, 0, cst)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	opts := DefaultOptions()
	opts.Calendar = calendar.New(cst)
	opts.Now = func() time.Time { return fixedNow }
	opts.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	e, err := NewEngine(opts)
	require.NoError(t, err)
	return e
}

func employee(id int64, skills map[string]int, prefs map[string]int) *domain.Employee {
	s, err := domain.NewSkillLevels(skills)
	if err != nil {
		panic(err)
	}
	p, err := domain.NewPreferenceLevels(prefs)
	if err != nil {
		panic(err)
	}
	return &domain.Employee{
		ID:       id,
		Username: fmt.Sprintf("user%d", id),
		Profile:  domain.Profile{Skills: s, Preferences: p},
	}
}

func task(id int64, hours float64, skills []string, category string) *domain.Task {
	return &domain.Task{
		ID:             id,
		ProjectID:      1,
		Title:          "task",
		EstimatedHours: hours,
		RequiredSkills: skills,
		Category:       category,
		Status:         domain.TaskStatusTodo,
	}
}

func ptr(v int64) *int64 {
	return &v
}

func TestRunAssignsBestSkillMatch(t *testing.T) {
	e := newTestEngine(t)

	backend := employee(1, map[string]int{"Go": 5, "SQL": 4}, map[string]int{"backend": 5})
	frontend := employee(2, map[string]int{"React": 5}, map[string]int{"frontend": 5})

	project := &domain.Project{
		ID:      1,
		Members: []*domain.Employee{frontend, backend},
		Tasks: []*domain.Task{
			task(10, 4, []string{"Go", "SQL"}, "Backend"),
			task(11, 4, []string{"React"}, "frontend"),
		},
	}

	result := e.Run(Snapshot{Project: project})

	require.Equal(t, domain.RunStatusSuccess, result.Status)
	assert.Equal(t, 2, result.AssignedCount)
	assert.Equal(t, 0, result.UnassignedCount)
	assert.True(t, project.Tasks[0].IsAssignedTo(1))
	assert.True(t, project.Tasks[1].IsAssignedTo(2))

	for _, tk := range project.Tasks {
		assert.Equal(t, domain.TaskStatusInProgress, tk.Status)
		assert.Equal(t, int32(0), tk.Progress)
		require.NotNil(t, tk.DueDate)
	}

	// 4 × 1.25 = 5 个工作小时：周四 10:00 + 5h = 周四 15:00
	assert.True(t, time.Date(2025, 11, 13, 15, 0, 0, 0, cst).Equal(*project.Tasks[0].DueDate))
}

func TestRunNoUnassignedTasksIsNoOp(t *testing.T) {
	e := newTestEngine(t)

	assigned := task(10, 2, nil, "")
	assigned.AssignedTo = ptr(1)

	project := &domain.Project{
		ID:      1,
		Members: []*domain.Employee{employee(1, nil, nil)},
		Tasks:   []*domain.Task{assigned},
	}

	result := e.Run(Snapshot{Project: project})

	assert.Equal(t, domain.RunStatusNoOp, result.Status)
	assert.Empty(t, result.Entries)
	assert.NoError(t, result.Err)
}

func TestRunWithoutEligibleMembersFailsBeforeMutation(t *testing.T) {
	e := newTestEngine(t)

	struck := employee(1, nil, nil)
	struck.StrikeCount = DefaultMaxStrikes

	tk := task(10, 2, nil, "")
	project := &domain.Project{
		ID:      1,
		Members: []*domain.Employee{struck},
		Tasks:   []*domain.Task{tk},
	}

	result := e.Run(Snapshot{Project: project})

	assert.Equal(t, domain.RunStatusError, result.Status)
	assert.True(t, domain.IsKind(result.Err, domain.KindInput))
	assert.False(t, tk.IsAssigned())
	assert.Equal(t, domain.TaskStatusTodo, tk.Status)
	assert.Nil(t, tk.DueDate)
}

func TestRunNilProjectIsNotFound(t *testing.T) {
	e := newTestEngine(t)

	result := e.Run(Snapshot{})

	assert.Equal(t, domain.RunStatusError, result.Status)
	assert.True(t, domain.IsKind(result.Err, domain.KindNotFound))
}

func TestRunSkipsStruckMembers(t *testing.T) {
	e := newTestEngine(t)

	expert := employee(1, map[string]int{"Go": 5}, nil)
	expert.StrikeCount = 5
	novice := employee(2, map[string]int{"Go": 1}, nil)

	project := &domain.Project{
		ID:      1,
		Members: []*domain.Employee{expert, novice},
		Tasks:   []*domain.Task{task(10, 2, []string{"Go"}, "")},
	}

	result := e.Run(Snapshot{Project: project})

	require.Equal(t, domain.RunStatusSuccess, result.Status)
	assert.True(t, project.Tasks[0].IsAssignedTo(2))
}

func TestRunTieGoesToFirstMember(t *testing.T) {
	e := newTestEngine(t)

	project := &domain.Project{
		ID:      1,
		Members: []*domain.Employee{employee(3, nil, nil), employee(1, nil, nil), employee(2, nil, nil)},
		Tasks:   []*domain.Task{task(10, 2, nil, "")},
	}

	e.Run(Snapshot{Project: project})

	assert.True(t, project.Tasks[0].IsAssignedTo(3))
}

func TestRunBalancesLoadBetweenEqualMembers(t *testing.T) {
	e := newTestEngine(t)

	project := &domain.Project{
		ID:      1,
		Members: []*domain.Employee{employee(1, nil, nil), employee(2, nil, nil)},
		Tasks: []*domain.Task{
			task(10, 3, nil, ""),
			task(11, 3, nil, ""),
			task(12, 3, nil, ""),
		},
	}

	result := e.Run(Snapshot{Project: project})

	require.Equal(t, 3, result.AssignedCount)
	// 第一个任务代价相同给了 1 号；之后 1 号工作量最大，第二个任务给 2 号；第三个任务两人工作量相同，又回到 1 号
	assert.True(t, project.Tasks[0].IsAssignedTo(1))
	assert.True(t, project.Tasks[1].IsAssignedTo(2))
	assert.True(t, project.Tasks[2].IsAssignedTo(1))

	assert.InDelta(t, 3.0, result.Entries[0].Workload, 1e-9)
	assert.InDelta(t, 3.0, result.Entries[1].Workload, 1e-9)
	assert.InDelta(t, 6.0, result.Entries[2].Workload, 1e-9)
}

func TestRunCountsExistingWorkload(t *testing.T) {
	e := newTestEngine(t)

	busy := employee(1, nil, nil)
	idle := employee(2, nil, nil)

	// 其他项目里 1 号还有 10 小时的任务，完成了一半
	other := &domain.Task{ID: 99, ProjectID: 2, EstimatedHours: 10, Progress: 50, AssignedTo: ptr(1)}

	project := &domain.Project{
		ID:      1,
		Members: []*domain.Employee{busy, idle},
		Tasks:   []*domain.Task{task(10, 2, nil, "")},
	}

	result := e.Run(Snapshot{Project: project, AssignedTasks: []*domain.Task{other}})

	require.Equal(t, domain.RunStatusSuccess, result.Status)
	assert.True(t, project.Tasks[0].IsAssignedTo(2))
}

func TestRunLogsInvalidTaskAndContinues(t *testing.T) {
	e := newTestEngine(t)

	project := &domain.Project{
		ID:      1,
		Members: []*domain.Employee{employee(1, nil, nil)},
		Tasks: []*domain.Task{
			task(10, 0, nil, ""),
			task(11, 1, nil, ""),
		},
	}

	result := e.Run(Snapshot{Project: project})

	require.Equal(t, domain.RunStatusSuccess, result.Status)
	assert.Equal(t, 1, result.AssignedCount)
	assert.Equal(t, 1, result.UnassignedCount)
	assert.Len(t, result.Entries, 2)
	assert.False(t, result.Entries[0].Assigned)
	assert.NotEmpty(t, result.Entries[0].Reason)
	assert.Equal(t, []int64{11}, result.AssignedTaskIDs())
}

func TestRunSkipsTaskWithTooManyHours(t *testing.T) {
	e := newTestEngine(t)

	project := &domain.Project{
		ID:      1,
		Members: []*domain.Employee{employee(1, nil, nil)},
		Tasks: []*domain.Task{
			task(10, 3e6, nil, ""),
			task(11, domain.MaxEstimatedHours, nil, ""),
		},
	}

	result := e.Run(Snapshot{Project: project})

	require.Equal(t, domain.RunStatusSuccess, result.Status)
	assert.Equal(t, []int64{11}, result.AssignedTaskIDs())
	assert.False(t, result.Entries[0].Assigned)
	assert.NotEmpty(t, result.Entries[0].Reason)
	assert.Nil(t, project.Tasks[0].DueDate)

	due := project.Tasks[1].DueDate
	require.NotNil(t, due)
	assert.True(t, due.After(e.now()))
}

func TestRunDurationIgnoresInjectedClock(t *testing.T) {
	opts := DefaultOptions()
	opts.Calendar = calendar.New(cst)
	opts.Now = func() time.Time { return time.Date(2030, 1, 7, 9, 0, 0, 0, cst) }
	opts.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	e, err := NewEngine(opts)
	require.NoError(t, err)

	project := &domain.Project{
		ID:      1,
		Members: []*domain.Employee{employee(1, nil, nil)},
		Tasks:   []*domain.Task{task(10, 2, nil, "")},
	}

	result := e.Run(Snapshot{Project: project})

	require.Equal(t, domain.RunStatusSuccess, result.Status)
	assert.True(t, result.StartedAt.Equal(opts.Now()))
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
	assert.Less(t, result.Duration, time.Minute)
}

func TestRunEveryTaskIsAccountedFor(t *testing.T) {
	e := newTestEngine(t)

	members := []*domain.Employee{
		employee(1, map[string]int{"Go": 3, "Docker": 2}, map[string]int{"backend": 4}),
		employee(2, map[string]int{"React": 4, "CSS": 5}, map[string]int{"frontend": 5, "design": 2}),
		employee(3, map[string]int{"Go": 1, "React": 1}, map[string]int{"docs": 5}),
	}

	tasks := []*domain.Task{
		task(10, 5, []string{"Go"}, "backend"),
		task(11, 2, []string{"CSS"}, "design"),
		task(12, 8, nil, "docs"),
		task(13, 1, []string{"Go", "React"}, ""),
		task(14, 3, []string{"Kubernetes"}, "ops"),
		task(15, 6, nil, ""),
	}

	project := &domain.Project{ID: 1, Members: members, Tasks: tasks}
	result := e.Run(Snapshot{Project: project})

	require.Equal(t, domain.RunStatusSuccess, result.Status)
	assert.Equal(t, len(tasks), result.AssignedCount+result.UnassignedCount)
	assert.Len(t, result.Entries, len(tasks))

	// 每个成员的工作量单调不减，且每次增加的量等于任务工时
	last := map[int64]float64{}
	for i, entry := range result.Entries {
		require.True(t, entry.Assigned)
		id := *entry.EmployeeID
		assert.InDelta(t, last[id]+tasks[i].EstimatedHours, entry.Workload, 1e-9)
		last[id] = entry.Workload

		assert.GreaterOrEqual(t, entry.Cost.Total, 0.0)
	}
}

func TestNewEngineRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Weights.Skill = -1
	_, err := NewEngine(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.MaxStrikes = 0
	_, err = NewEngine(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.DeadlineBuffer = -0.5
	_, err = NewEngine(opts)
	assert.Error(t, err)
}
