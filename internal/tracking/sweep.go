package tracking

import (
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

// Strike 一次逾期记录
type Strike struct {
	TaskID      int64  `json:"taskID"`
	TaskTitle   string `json:"taskTitle"`
	EmployeeID  int64  `json:"employeeID"`
	StrikeCount int32  `json:"strikeCount"` // 记录之后的逾期次数
}

type SweepReport struct {
	CheckedAt time.Time `json:"checkedAt"`
	Strikes   []Strike  `json:"strikes"`
	// 已经逾期但无法记录的任务，例如没有分配或者找不到负责人
	Skipped []int64 `json:"skipped"`
}

// IsOverdue 截止时间已过且仍处于 TODO 或 IN_PROGRESS 的任务
func IsOverdue(task *domain.Task, now time.Time) bool {
	if task.DueDate == nil || !task.DueDate.Before(now) {
		return false
	}
	return task.Status == domain.TaskStatusTodo || task.Status == domain.TaskStatusInProgress
}

// Sweep 把逾期任务标记为 OVERDUE 并给负责人记一次逾期
// 被标记过的任务不会再被扫描到，所以同一个任务只会记一次
func Sweep(tasks []*domain.Task, employees []*domain.Employee, now time.Time) SweepReport {
	report := SweepReport{
		CheckedAt: now,
		Strikes:   []Strike{},
		Skipped:   []int64{},
	}

	byID := make(map[int64]*domain.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	for _, t := range tasks {
		if !IsOverdue(t, now) {
			continue
		}
		if t.AssignedTo == nil {
			report.Skipped = append(report.Skipped, t.ID)
			continue
		}
		e, ok := byID[*t.AssignedTo]
		if !ok {
			report.Skipped = append(report.Skipped, t.ID)
			continue
		}

		e.StrikeCount++
		t.Status = domain.TaskStatusOverdue
		report.Strikes = append(report.Strikes, Strike{
			TaskID:      t.ID,
			TaskTitle:   t.Title,
			EmployeeID:  e.ID,
			StrikeCount: e.StrikeCount,
		})
	}

	return report
}
