package domain

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusNoOp    RunStatus = "no_op"
	RunStatusError   RunStatus = "error"
)

type CostBreakdown struct {
	Workload   float64 `json:"workload"`
	Skill      float64 `json:"skill"`
	Preference float64 `json:"preference"`
	Total      float64 `json:"total"`
}

// AssignmentEntry 单个任务的分配记录，无论是否分配成功都会有一条
type AssignmentEntry struct {
	TaskID       int64         `json:"taskID"`
	TaskTitle    string        `json:"taskTitle"`
	Assigned     bool          `json:"assigned"`
	EmployeeID   *int64        `json:"employeeID"`
	EmployeeName string        `json:"employeeName,omitempty"`
	Cost         CostBreakdown `json:"cost"`
	DueDate      *time.Time    `json:"dueDate"`
	Workload     float64       `json:"workload"` // 分配后该员工的剩余工作量
	Reason       string        `json:"reason,omitempty"`
}

type AssignmentResult struct {
	RunID           uuid.UUID         `json:"runID"`
	ProjectID       int64             `json:"projectID"`
	Status          RunStatus         `json:"status"`
	Message         string            `json:"message"`
	Entries         []AssignmentEntry `json:"entries"`
	AssignedCount   int               `json:"assignedCount"`
	UnassignedCount int               `json:"unassignedCount"`
	StartedAt       time.Time         `json:"startedAt"`
	Duration        time.Duration     `json:"duration"`
	Err             error             `json:"-"`
}

// AssignedTaskIDs 返回本次成功分配的任务 ID
func (r *AssignmentResult) AssignedTaskIDs() []int64 {
	ids := make([]int64, 0, r.AssignedCount)
	for _, e := range r.Entries {
		if e.Assigned {
			ids = append(ids, e.TaskID)
		}
	}
	return ids
}

type MeetingSlot struct {
	Start         time.Time `json:"startTime"`
	End           time.Time `json:"endTime"`
	AttendeeCount int       `json:"attendeesCount"`
	TotalMembers  int       `json:"totalMembers"`
	Fitness       float64   `json:"fitnessScore"`
	Attendees     []int64   `json:"attendees"`
}

type MeetingResult struct {
	ProjectID   int64        `json:"projectID"`
	Status      RunStatus    `json:"status"`
	Message     string       `json:"message"`
	BestSlot    *MeetingSlot `json:"bestSlot"`
	Generations int          `json:"generations"`
	Evaluations int          `json:"evaluations"`
}
