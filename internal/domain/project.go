package domain

import "time"

type Project struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	LeaderID    int64       `json:"leaderID"`
	Members     []*Employee `json:"members"`
	Tasks       []*Task     `json:"tasks"`
	CreatedAt   time.Time   `json:"createdAt"`
	Version     int32       `json:"-"`
}

// Member 根据 ID 查找项目成员
func (p *Project) Member(id int64) *Employee {
	for _, m := range p.Members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// UnassignedTasks 按原有顺序返回所有未分配的任务
func (p *Project) UnassignedTasks() []*Task {
	tasks := make([]*Task, 0)
	for _, t := range p.Tasks {
		if !t.IsAssigned() {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// EligibleMembers 返回还可以被分配任务的成员
func (p *Project) EligibleMembers(maxStrikes int32) []*Employee {
	members := make([]*Employee, 0, len(p.Members))
	for _, m := range p.Members {
		if m.Eligible(maxStrikes) {
			members = append(members, m)
		}
	}
	return members
}

type AvailabilitySlot struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeID"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
}

// Validate 结束时间必须晚于开始时间
func (s *AvailabilitySlot) Validate() error {
	if !s.EndTime.After(s.StartTime) {
		return NewError(KindInput, "空闲时间的结束时间必须晚于开始时间")
	}
	return nil
}

// Contains 判断 [start, end) 是否完全落在空闲时间内
func (s *AvailabilitySlot) Contains(start, end time.Time) bool {
	return !s.StartTime.After(start) && !s.EndTime.Before(end)
}
