// Package tracking 处理任务进度更新和逾期检查
package tracking

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

const (
	ExtensionThreshold = 75  // 进度首次达到该值时可以获得延期
	ExtensionRatio     = 0.2 // 延期的工作小时数 = 预计工时 × ExtensionRatio
)

type ProgressUpdate struct {
	TaskID         int64             `json:"taskID"`
	OldProgress    int32             `json:"oldProgress"`
	NewProgress    int32             `json:"newProgress"`
	OldStatus      domain.TaskStatus `json:"oldStatus"`
	NewStatus      domain.TaskStatus `json:"newStatus"`
	Extended       bool              `json:"extended"`
	ExtensionHours float64           `json:"extensionHours"`
	OldDueDate     *time.Time        `json:"oldDueDate"`
	NewDueDate     *time.Time        `json:"newDueDate"`
	Message        string            `json:"message"`
}

// UpdateProgress 更新任务进度
// 在截止时间之前把进度从 75% 以下提到 75% 及以上时，截止时间从原截止时间起顺延 20% 预计工时的工作小时
// 出错时不会修改 task
func UpdateProgress(task *domain.Task, progress int32, now time.Time, cal *calendar.Calendar) (ProgressUpdate, error) {
	if err := domain.ValidateProgress(progress); err != nil {
		return ProgressUpdate{}, err
	}
	if cal == nil {
		cal = calendar.Default()
	}

	update := ProgressUpdate{
		TaskID:      task.ID,
		OldProgress: task.Progress,
		NewProgress: progress,
		OldStatus:   task.Status,
		OldDueDate:  task.DueDate,
		NewDueDate:  task.DueDate,
	}

	if task.DueDate != nil &&
		task.Progress < ExtensionThreshold &&
		progress >= ExtensionThreshold &&
		now.Before(*task.DueDate) {
		hours := task.EstimatedHours * ExtensionRatio
		due, err := cal.Advance(*task.DueDate, hours)
		if err != nil {
			return ProgressUpdate{}, domain.Wrap(err, domain.KindComputation, "计算延期后的截止时间失败")
		}
		update.Extended = true
		update.ExtensionHours = hours
		update.NewDueDate = &due
		update.Message = fmt.Sprintf("截止时间顺延 %.1f 个工作小时至 %s", hours, due.Format("2006-01-02 15:04"))
	}

	task.Progress = progress
	task.DueDate = update.NewDueDate
	switch {
	case progress == 100:
		task.Status = domain.TaskStatusDone
	case task.Status == domain.TaskStatusTodo:
		task.Status = domain.TaskStatusInProgress
	}
	update.NewStatus = task.Status

	return update, nil
}
