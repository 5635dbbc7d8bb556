package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/utils"
)

func (h *Handler) GetAllProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repository.GetAllProjects()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取项目列表成功", projects)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required,max=255"`
		Description string `json:"description"`
		LeaderID    int64  `json:"leaderID" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	project := &domain.Project{
		Name:        req.Name,
		Description: req.Description,
		LeaderID:    req.LeaderID,
	}

	if err := h.repository.CreateProject(project); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "projects_leader_id_fkey", "project_members_employee_id_fkey":
				h.badRequest(w, r, errors.New("负责人不存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	created, err := h.repository.GetProjectByID(project.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "项目创建成功", created)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project := r.Context().Value(ProjectCtx).(*domain.Project)
	h.successResponse(w, r, "获取项目信息成功", project)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	project := r.Context().Value(ProjectCtx).(*domain.Project)

	if err := h.repository.DeleteProject(project.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "项目删除成功", nil)
}

func (h *Handler) AddProjectMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	project := r.Context().Value(ProjectCtx).(*domain.Project)

	employee, err := h.repository.GetEmployeeByUsername(req.Username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if project.Member(employee.ID) != nil {
		h.errorResponse(w, r, "该员工已经是项目成员")
		return
	}

	if err := h.repository.AddProjectMember(project.ID, employee.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	project.Members = append(project.Members, employee)

	h.successResponse(w, r, "成员添加成功", project)
}

func (h *Handler) RemoveProjectMember(w http.ResponseWriter, r *http.Request) {
	project := r.Context().Value(ProjectCtx).(*domain.Project)

	employeeID, err := parseIDParam(r, "employeeID")
	if err != nil {
		h.errorResponse(w, r, "员工ID无效")
		return
	}

	if err := utils.ValidateMemberRemoval(project, employeeID); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.RemoveProjectMember(project.ID, employeeID); err != nil {
		switch {
		case errors.Is(err, repository.ErrLastMember):
			h.errorResponse(w, r, err.Error())
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该员工不是项目成员")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	members := make([]*domain.Employee, 0, len(project.Members))
	for _, m := range project.Members {
		if m.ID != employeeID {
			members = append(members, m)
		}
	}
	project.Members = members

	h.successResponse(w, r, "成员移除成功", project)
}
