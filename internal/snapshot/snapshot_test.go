package snapshot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

func TestLoadFile(t *testing.T) {
	snap, err := LoadFile("testdata/project.yaml")
	require.NoError(t, err)

	p := snap.Project
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "官网改版", p.Name)
	require.Len(t, p.Members, 2)
	assert.Equal(t, int64(1), p.Members[0].ID)
	assert.Equal(t, int64(2), p.Members[1].ID)
	assert.Equal(t, int64(2), p.LeaderID)

	// 偏好类别统一为小写
	assert.Equal(t, 5, p.Members[0].Profile.Preferences["backend"])
	assert.Equal(t, 5, p.Members[0].Profile.Skills["Go"])

	require.Len(t, p.Tasks, 2)
	assert.Equal(t, int64(1), p.Tasks[0].ID)
	assert.Equal(t, domain.TaskStatusTodo, p.Tasks[0].Status)
	assert.Nil(t, p.Tasks[0].AssignedTo)

	assigned := p.Tasks[1]
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, int64(2), *assigned.AssignedTo)
	assert.Equal(t, domain.TaskStatusInProgress, assigned.Status)
	require.NotNil(t, assigned.DueDate)
	assert.True(t, assigned.DueDate.Equal(time.Date(2025, 11, 12, 4, 0, 0, 0, time.UTC)))

	require.Len(t, snap.Slots, 2)
	assert.Equal(t, int64(1), snap.Slots[0].EmployeeID)
	assert.Equal(t, 3*time.Hour, snap.Slots[0].EndTime.Sub(snap.Slots[0].StartTime))
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"没有成员", "project: {name: x}\n"},
		{"未知字段", "project: {name: x}\nmembers: [{username: a}]\nextra: 1\n"},
		{"成员重复", "members: [{username: a}, {username: a}]\n"},
		{"负责人不是成员", "project: {leader: b}\nmembers: [{username: a}]\n"},
		{"技能等级无效", "members: [{username: a, skills: {Go: 9}}]\n"},
		{"预计工时过大", "members: [{username: a}]\ntasks: [{title: t, estimatedHours: 3000000}]\n"},
		{"进度无效", "members: [{username: a}]\ntasks: [{title: t, progress: 30}]\n"},
		{"状态无效", "members: [{username: a}]\ntasks: [{title: t, status: PAUSED}]\n"},
		{"负责人未知", "members: [{username: a}]\ntasks: [{title: t, assignedTo: b}]\n"},
		{"空闲时间倒置", "members: [{username: a}]\navailability: [{employee: a, start: 2025-11-10T12:00:00Z, end: 2025-11-10T09:00:00Z}]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}
