// Package snapshot 从 YAML 文件中读取项目快照，用于不依赖数据库的离线计算
package snapshot

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

type File struct {
	Project      ProjectSpec        `yaml:"project"`
	Members      []MemberSpec       `yaml:"members"`
	Tasks        []TaskSpec         `yaml:"tasks"`
	Availability []AvailabilitySpec `yaml:"availability"`
}

type ProjectSpec struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Leader      string `yaml:"leader"` // 负责人的用户名，为空时取第一个成员
}

type MemberSpec struct {
	ID          int64          `yaml:"id"`
	Username    string         `yaml:"username"`
	FullName    string         `yaml:"fullName"`
	Email       string         `yaml:"email"`
	StrikeCount int32          `yaml:"strikeCount"`
	Skills      map[string]int `yaml:"skills"`
	Preferences map[string]int `yaml:"preferences"`
}

type TaskSpec struct {
	ID             int64      `yaml:"id"`
	Title          string     `yaml:"title"`
	Description    string     `yaml:"description"`
	EstimatedHours float64    `yaml:"estimatedHours"`
	RequiredSkills []string   `yaml:"requiredSkills"`
	Category       string     `yaml:"category"`
	Progress       int32      `yaml:"progress"`
	Status         string     `yaml:"status"`
	AssignedTo     string     `yaml:"assignedTo"` // 用户名
	DueDate        *time.Time `yaml:"dueDate"`
}

type AvailabilitySpec struct {
	Employee string    `yaml:"employee"` // 用户名
	Start    time.Time `yaml:"start"`
	End      time.Time `yaml:"end"`
}

// Snapshot 转换后的项目和成员的空闲时间
type Snapshot struct {
	Project *domain.Project
	Slots   []*domain.AvailabilitySlot
}

func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

func Load(r io.Reader) (*Snapshot, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("解析快照失败: %w", err)
	}
	return file.Build()
}

// Build 校验快照并转换为领域对象，成员和任务的 ID 缺省时按出现顺序从 1 开始编号
func (f *File) Build() (*Snapshot, error) {
	if len(f.Members) == 0 {
		return nil, domain.NewError(domain.KindInput, "快照中没有成员")
	}

	project := &domain.Project{
		ID:          f.Project.ID,
		Name:        f.Project.Name,
		Description: f.Project.Description,
		Members:     make([]*domain.Employee, 0, len(f.Members)),
		Tasks:       make([]*domain.Task, 0, len(f.Tasks)),
	}
	if project.ID == 0 {
		project.ID = 1
	}

	byUsername := make(map[string]*domain.Employee, len(f.Members))
	for i, m := range f.Members {
		if m.Username == "" {
			return nil, domain.NewError(domain.KindInput, fmt.Sprintf("第 %d 个成员没有用户名", i+1))
		}
		if _, exists := byUsername[m.Username]; exists {
			return nil, domain.NewError(domain.KindInput, fmt.Sprintf("成员 %s 重复", m.Username))
		}

		skills, err := domain.NewSkillLevels(m.Skills)
		if err != nil {
			return nil, err
		}
		prefs, err := domain.NewPreferenceLevels(m.Preferences)
		if err != nil {
			return nil, err
		}

		id := m.ID
		if id == 0 {
			id = int64(i + 1)
		}
		if project.Member(id) != nil {
			return nil, domain.NewError(domain.KindInput, fmt.Sprintf("成员 ID %d 重复", id))
		}

		e := &domain.Employee{
			ID:          id,
			Username:    m.Username,
			FullName:    m.FullName,
			Email:       m.Email,
			StrikeCount: m.StrikeCount,
			Profile:     domain.Profile{Skills: skills, Preferences: prefs},
		}
		project.Members = append(project.Members, e)
		byUsername[m.Username] = e
	}

	project.LeaderID = project.Members[0].ID
	if f.Project.Leader != "" {
		leader, ok := byUsername[f.Project.Leader]
		if !ok {
			return nil, domain.NewError(domain.KindInput, fmt.Sprintf("负责人 %s 不是项目成员", f.Project.Leader))
		}
		project.LeaderID = leader.ID
	}

	taskIDs := make([]int64, 0, len(f.Tasks))
	for i, t := range f.Tasks {
		task, err := t.build(int64(i+1), project.ID, byUsername)
		if err != nil {
			return nil, err
		}
		if slices.Contains(taskIDs, task.ID) {
			return nil, domain.NewError(domain.KindInput, fmt.Sprintf("任务 ID %d 重复", task.ID))
		}
		taskIDs = append(taskIDs, task.ID)
		project.Tasks = append(project.Tasks, task)
	}

	slots := make([]*domain.AvailabilitySlot, 0, len(f.Availability))
	for _, a := range f.Availability {
		e, ok := byUsername[a.Employee]
		if !ok {
			return nil, domain.NewError(domain.KindInput, fmt.Sprintf("空闲时间中的 %s 不是项目成员", a.Employee))
		}
		slot := &domain.AvailabilitySlot{
			ID:         int64(len(slots) + 1),
			EmployeeID: e.ID,
			StartTime:  a.Start,
			EndTime:    a.End,
		}
		if err := slot.Validate(); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	return &Snapshot{Project: project, Slots: slots}, nil
}

func (t TaskSpec) build(defaultID, projectID int64, byUsername map[string]*domain.Employee) (*domain.Task, error) {
	if err := domain.ValidateProgress(t.Progress); err != nil {
		return nil, err
	}
	if t.EstimatedHours < 0 || t.EstimatedHours > domain.MaxEstimatedHours {
		return nil, domain.NewError(domain.KindInput, fmt.Sprintf("任务 %s 的预计工时必须在 0 到 %d 小时之间", t.Title, domain.MaxEstimatedHours))
	}

	status := domain.TaskStatus(t.Status)
	switch status {
	case "":
		status = domain.TaskStatusTodo
	case domain.TaskStatusTodo, domain.TaskStatusInProgress, domain.TaskStatusDone, domain.TaskStatusOverdue:
	default:
		return nil, domain.NewError(domain.KindInput, fmt.Sprintf("任务 %s 的状态 %s 无效", t.Title, t.Status))
	}

	task := &domain.Task{
		ID:             t.ID,
		ProjectID:      projectID,
		Title:          t.Title,
		Description:    t.Description,
		EstimatedHours: t.EstimatedHours,
		RequiredSkills: t.RequiredSkills,
		Category:       t.Category,
		Progress:       t.Progress,
		Status:         status,
		DueDate:        t.DueDate,
	}
	if task.ID == 0 {
		task.ID = defaultID
	}
	if task.RequiredSkills == nil {
		task.RequiredSkills = []string{}
	}

	if t.AssignedTo != "" {
		e, ok := byUsername[t.AssignedTo]
		if !ok {
			return nil, domain.NewError(domain.KindInput, fmt.Sprintf("任务 %s 的负责人 %s 不是项目成员", t.Title, t.AssignedTo))
		}
		id := e.ID
		task.AssignedTo = &id
	}

	return task, nil
}
