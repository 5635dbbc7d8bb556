package domain

import (
	"slices"
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusOverdue    TaskStatus = "OVERDUE"
)

// MaxEstimatedHours 单个任务的预计工时上限
const MaxEstimatedHours = 1000

// AllowedProgress 进度只能取这些值
var AllowedProgress = []int32{0, 25, 50, 75, 100}

type Task struct {
	ID             int64      `json:"id"`
	ProjectID      int64      `json:"projectID"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	EstimatedHours float64    `json:"estimatedHours"`
	RequiredSkills []string   `json:"requiredSkills"`
	Category       string     `json:"category"`
	Progress       int32      `json:"progress"`
	Status         TaskStatus `json:"status"`
	AssignedTo     *int64     `json:"assignedTo"` // 为 nil 表示任务尚未分配
	DueDate        *time.Time `json:"dueDate"`    // 只有在任务分配之后才会设置
	CreatedAt      time.Time  `json:"createdAt"`
	Version        int32      `json:"-"`
}

// ValidateProgress 检查进度是否为合法取值
func ValidateProgress(progress int32) error {
	if !slices.Contains(AllowedProgress, progress) {
		return NewError(KindInput, "进度只能是 0、25、50、75、100 之一")
	}
	return nil
}

// IsAssigned 任务是否已经分配
func (t *Task) IsAssigned() bool {
	return t.AssignedTo != nil
}

// IsAssignedTo 任务是否分配给了指定员工
func (t *Task) IsAssignedTo(employeeID int64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == employeeID
}

// IsTerminal DONE 和 OVERDUE 都不会再被扫描
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusDone || t.Status == TaskStatusOverdue
}

// RemainingHours 剩余工作量 = 预计工时 × (1 - 进度)
func (t *Task) RemainingHours() float64 {
	if t.Progress >= 100 {
		return 0
	}
	return t.EstimatedHours * (1 - float64(t.Progress)/100)
}
