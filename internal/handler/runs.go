package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/assignment"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/notify"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/scheduler"
)

// withRunLock 在持有项目计算锁的情况下执行 fn
func (h *Handler) withRunLock(w http.ResponseWriter, r *http.Request, projectID int64, fn func()) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	release, err := acquireRunLock(ctx, h.redisClient, projectID, time.Duration(h.config.Lock.TTL)*time.Second)
	if err != nil {
		switch {
		case errors.Is(err, ErrProjectBusy):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
		defer cancel()
		if err := release(ctx); err != nil {
			slog.Error("无法释放项目计算锁", "projectID", projectID, "error", err)
		}
	}()

	fn()
}

func (h *Handler) RunAssignment(w http.ResponseWriter, r *http.Request) {
	loaded := r.Context().Value(ProjectCtx).(*domain.Project)

	h.withRunLock(w, r, loaded.ID, func() {
		// 拿到锁之后重新读取，保证看到的是最新的任务
		project, err := h.repository.GetProjectByID(loaded.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		openTasks, err := h.repository.GetMemberOpenTasks(project.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		result := h.engine.Run(assignment.Snapshot{Project: project, AssignedTasks: openTasks})
		switch result.Status {
		case domain.RunStatusError:
			h.appErrorResponse(w, r, result.Err, result)
			return
		case domain.RunStatusNoOp:
			h.successResponse(w, r, result.Message, result)
			return
		}

		if err := h.repository.SaveAssignmentResult(result, project.Tasks); err != nil {
			switch {
			case errors.Is(err, repository.ErrEditConflict):
				h.errorResponse(w, r, err.Error())
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		h.publisher.PublishAll(assignmentMails(project, result))

		h.successResponse(w, r, result.Message, result)
	})
}

// GetAssignmentRun 查看项目的一次分配记录
func (h *Handler) GetAssignmentRun(w http.ResponseWriter, r *http.Request) {
	project := r.Context().Value(ProjectCtx).(*domain.Project)

	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		h.errorResponse(w, r, "分配记录ID无效")
		return
	}

	run, err := h.repository.GetAssignmentRun(runID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "分配记录不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if run.ProjectID != project.ID {
		h.errorResponse(w, r, "分配记录不存在")
		return
	}

	h.successResponse(w, r, "获取分配记录成功", run)
}

func assignmentMails(project *domain.Project, result *domain.AssignmentResult) []domain.MailMessage {
	tasks := make(map[int64]*domain.Task, len(project.Tasks))
	for _, t := range project.Tasks {
		tasks[t.ID] = t
	}

	msgs := make([]domain.MailMessage, 0, result.AssignedCount)
	for _, entry := range result.Entries {
		if !entry.Assigned || entry.EmployeeID == nil {
			continue
		}
		member := project.Member(*entry.EmployeeID)
		task := tasks[entry.TaskID]
		if member == nil || task == nil {
			continue
		}
		msgs = append(msgs, notify.TaskAssigned(member, project, task))
	}
	return msgs
}

func (h *Handler) RunScheduler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DurationHours *float64 `json:"durationHours" validate:"omitempty,gt=0,lte=8"`
	}

	// 请求体可以为空
	if r.ContentLength != 0 {
		if err := h.readJSON(r, &req); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	duration := h.config.Scheduler.DefaultDuration
	if req.DurationHours != nil {
		duration = *req.DurationHours
	}

	project := r.Context().Value(ProjectCtx).(*domain.Project)

	h.withRunLock(w, r, project.ID, func() {
		slots, err := h.repository.GetAvailabilitySlotsByProjectID(project.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		result, err := h.driver.Run(r.Context(), scheduler.Request{
			Project:       project,
			Slots:         slots,
			DurationHours: duration,
			Now:           time.Now(),
			Location:      h.calendar.Location(),
		})
		if err != nil {
			h.appErrorResponse(w, r, err, result)
			return
		}

		h.successResponse(w, r, result.Message, result)
	})
}
