package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/notify"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/tracking"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/utils"
)

func (h *Handler) GetProjectTasks(w http.ResponseWriter, r *http.Request) {
	project := r.Context().Value(ProjectCtx).(*domain.Project)
	h.successResponse(w, r, "获取任务列表成功", project.Tasks)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title          string   `json:"title" validate:"required,max=255"`
		Description    string   `json:"description"`
		EstimatedHours float64  `json:"estimatedHours" validate:"required,gt=0,lte=1000"`
		RequiredSkills []string `json:"requiredSkills" validate:"dive,skillname"`
		Category       string   `json:"category" validate:"omitempty,skillname"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateRequiredSkills(req.RequiredSkills); err != nil {
		h.badRequest(w, r, err)
		return
	}

	project := r.Context().Value(ProjectCtx).(*domain.Project)

	skills := req.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	task := &domain.Task{
		ProjectID:      project.ID,
		Title:          req.Title,
		Description:    req.Description,
		EstimatedHours: req.EstimatedHours,
		RequiredSkills: skills,
		Category:       utils.NormalizeTaskCategory(req.Category),
	}

	if err := h.repository.CreateTask(task); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "任务创建成功", task)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskCtx).(*domain.Task)
	h.successResponse(w, r, "获取任务信息成功", task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskCtx).(*domain.Task)

	if err := h.repository.DeleteTask(task.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "任务删除成功", nil)
}

// UpdateTaskProgress 只有任务的负责人可以更新进度
func (h *Handler) UpdateTaskProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID int64  `json:"employeeID" validate:"required,min=1"`
		Progress   *int32 `json:"progress" validate:"required,oneof=0 25 50 75 100"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	task := r.Context().Value(TaskCtx).(*domain.Task)
	if !task.IsAssignedTo(req.EmployeeID) {
		h.errorResponse(w, r, "该任务没有分配给你")
		return
	}

	update, err := tracking.UpdateProgress(task, *req.Progress, time.Now(), h.calendar)
	if err != nil {
		h.appErrorResponse(w, r, err, nil)
		return
	}

	if err := h.repository.UpdateTaskProgress(task); err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if update.Extended {
		employee, err := h.repository.GetEmployeeByID(req.EmployeeID)
		if err != nil {
			slog.Error("无法获取任务负责人", "taskID", task.ID, "employeeID", req.EmployeeID, "error", err)
		} else if err := h.publisher.Publish(notify.DeadlineExtended(employee, task, update.ExtensionHours)); err != nil {
			slog.Error("邮件投递失败", "taskID", task.ID, "error", err)
		}
	}

	msg := "进度更新成功"
	if update.Message != "" {
		msg = update.Message
	}

	h.successResponse(w, r, msg, map[string]any{
		"task":   task,
		"update": update,
	})
}
