package domain

import "time"

const (
	MailTypeTaskAssigned     = "task_assigned"
	MailTypeDeadlineExtended = "deadline_extended"
	MailTypeStrikeIssued     = "strike_issued"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type TaskAssignedMailData struct {
	FullName     string    `json:"fullName"`
	ProjectName  string    `json:"projectName"`
	TaskTitle    string    `json:"taskTitle"`
	EstimatedHrs float64   `json:"estimatedHours"`
	DueDate      time.Time `json:"dueDate"`
}

type DeadlineExtendedMailData struct {
	FullName       string    `json:"fullName"`
	TaskTitle      string    `json:"taskTitle"`
	ExtensionHours float64   `json:"extensionHours"`
	DueDate        time.Time `json:"dueDate"`
}

type StrikeIssuedMailData struct {
	FullName    string `json:"fullName"`
	TaskTitle   string `json:"taskTitle"`
	StrikeCount int32  `json:"strikeCount"`
	MaxStrikes  int32  `json:"maxStrikes"`
}
