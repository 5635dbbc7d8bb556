// Package assignment 实现基于代价的贪心任务分配
package assignment

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

const (
	DefaultMaxStrikes     = 5
	DefaultDeadlineBuffer = 1.25
)

type Options struct {
	Weights        Weights
	MaxStrikes     int32
	DeadlineBuffer float64 // 截止时间 = 预计工时 × DeadlineBuffer 个工作小时之后
	Calendar       *calendar.Calendar
	Now            func() time.Time
	Logger         *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Weights:        DefaultWeights(),
		MaxStrikes:     DefaultMaxStrikes,
		DeadlineBuffer: DefaultDeadlineBuffer,
	}
}

type Engine struct {
	weights        Weights
	maxStrikes     int32
	deadlineBuffer float64
	calendar       *calendar.Calendar
	now            func() time.Time
	logger         *slog.Logger
}

func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxStrikes <= 0 {
		return nil, errors.New("最大允许逾期次数必须大于 0")
	}
	if opts.DeadlineBuffer < 0 || math.IsNaN(opts.DeadlineBuffer) {
		return nil, errors.New("截止时间缓冲系数不能为负数")
	}

	e := &Engine{
		weights:        opts.Weights,
		maxStrikes:     opts.MaxStrikes,
		deadlineBuffer: opts.DeadlineBuffer,
		calendar:       opts.Calendar,
		now:            opts.Now,
		logger:         opts.Logger,
	}
	if e.calendar == nil {
		e.calendar = calendar.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "assignment")

	return e, nil
}

// Snapshot 一次分配所需的全部数据
type Snapshot struct {
	Project *domain.Project
	// AssignedTasks 是成员名下的所有任务（可以跨项目），用于计算剩余工作量
	// 为 nil 时只统计本项目的任务
	AssignedTasks []*domain.Task
}

func (s Snapshot) workloadTasks() []*domain.Task {
	if s.AssignedTasks != nil {
		return s.AssignedTasks
	}
	return s.Project.Tasks
}

// Run 按任务的原有顺序逐个贪心分配给代价最小的成员
// 会直接修改传入的任务，调用方负责持久化
func (e *Engine) Run(snap Snapshot) (result *domain.AssignmentResult) {
	// 耗时总是按真实时间计算，不受注入的 now 影响
	began := time.Now()
	result = &domain.AssignmentResult{
		RunID:     uuid.New(),
		StartedAt: e.now(),
		Entries:   make([]domain.AssignmentEntry, 0),
	}
	defer func() {
		result.Duration = time.Since(began)
	}()

	if snap.Project == nil {
		return e.fail(result, domain.NewError(domain.KindNotFound, "项目不存在"))
	}
	project := snap.Project
	result.ProjectID = project.ID

	tasks := project.UnassignedTasks()
	members := project.EligibleMembers(e.maxStrikes)
	e.logger.Info("开始分配任务",
		"runID", result.RunID,
		"projectID", project.ID,
		"tasks", len(tasks),
		"members", len(project.Members),
		"eligibleMembers", len(members),
	)

	if len(tasks) == 0 {
		result.Status = domain.RunStatusNoOp
		result.Message = "没有需要分配的任务"
		return result
	}
	if len(members) == 0 {
		return e.fail(result, domain.NewError(domain.KindInput, "没有可以分配任务的成员"))
	}

	memberIDs := make([]int64, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
	}
	tracker := NewWorkloadTracker(memberIDs, snap.workloadTasks())
	e.logger.Debug("初始工作量", "workloads", tracker.Snapshot(), "max", tracker.Max())

	// 计算过程中出现意外时中止本次分配，已经完成的分配保留在结果中
	defer func() {
		if r := recover(); r != nil {
			e.fail(result, domain.NewError(domain.KindComputation, "分配过程中发生意外错误").WithCause(fmt.Errorf("panic: %v", r)))
		}
	}()

	for _, task := range tasks {
		if !(task.EstimatedHours > 0) || task.EstimatedHours > domain.MaxEstimatedHours {
			result.Entries = append(result.Entries, domain.AssignmentEntry{
				TaskID:    task.ID,
				TaskTitle: task.Title,
				Reason:    fmt.Sprintf("预计工时必须在 0 到 %d 小时之间", domain.MaxEstimatedHours),
			})
			result.UnassignedCount++
			e.logger.Warn("任务预计工时无效，跳过", "taskID", task.ID, "estimatedHours", task.EstimatedHours)
			continue
		}

		var best *domain.Employee
		var bestCost domain.CostBreakdown
		lowest := math.Inf(1)

		for _, m := range members {
			cost := e.weights.Cost(task, m, tracker.Load(m.ID), tracker.Max())
			e.logger.Debug("计算代价",
				"taskID", task.ID,
				"employeeID", m.ID,
				"workload", tracker.Load(m.ID),
				"total", cost.Total,
				"workloadCost", cost.Workload,
				"skillCost", cost.Skill,
				"preferenceCost", cost.Preference,
			)
			// 严格小于，代价相同时保留先遇到的成员
			if cost.Total < lowest {
				lowest = cost.Total
				best = m
				bestCost = cost
			}
		}

		if best == nil {
			result.Entries = append(result.Entries, domain.AssignmentEntry{
				TaskID:    task.ID,
				TaskTitle: task.Title,
				Reason:    "没有找到可以分配的成员",
			})
			result.UnassignedCount++
			e.logger.Warn("任务没有可分配的成员", "taskID", task.ID)
			continue
		}

		dueDate, err := e.calendar.Advance(e.now(), task.EstimatedHours*e.deadlineBuffer)
		if err != nil {
			return e.fail(result, domain.Wrap(err, domain.KindComputation, "分配过程中发生意外错误"))
		}

		employeeID := best.ID
		task.AssignedTo = &employeeID
		task.Status = domain.TaskStatusInProgress
		task.Progress = 0
		task.DueDate = &dueDate

		tracker.Add(best.ID, task.EstimatedHours)

		result.Entries = append(result.Entries, domain.AssignmentEntry{
			TaskID:       task.ID,
			TaskTitle:    task.Title,
			Assigned:     true,
			EmployeeID:   &employeeID,
			EmployeeName: best.DisplayName(),
			Cost:         bestCost,
			DueDate:      &dueDate,
			Workload:     tracker.Load(best.ID),
		})
		result.AssignedCount++

		e.logger.Info("已分配任务",
			"taskID", task.ID,
			"employeeID", best.ID,
			"cost", bestCost.Total,
			"dueDate", dueDate,
			"workload", tracker.Load(best.ID),
			"maxWorkload", tracker.Max(),
		)
	}

	result.Status = domain.RunStatusSuccess
	result.Message = fmt.Sprintf("已分配 %d 个任务，%d 个任务未能分配", result.AssignedCount, result.UnassignedCount)
	e.logger.Info("任务分配完成", "runID", result.RunID, "assigned", result.AssignedCount, "unassigned", result.UnassignedCount)

	return result
}

func (e *Engine) fail(result *domain.AssignmentResult, err *domain.AppError) *domain.AssignmentResult {
	result.Status = domain.RunStatusError
	result.Message = err.Message
	result.Err = err
	if err.Kind == domain.KindComputation {
		e.logger.Error("任务分配失败", "runID", result.RunID, "error", err)
	} else {
		e.logger.Warn("任务分配未执行", "runID", result.RunID, "reason", err.Message)
	}
	return result
}
