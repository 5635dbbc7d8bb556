package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/utils"
)

func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", employees)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string         `json:"username" validate:"required,alphanum,max=32"`
		FullName    string         `json:"fullName" validate:"required"`
		Email       string         `json:"email" validate:"required,email"`
		Skills      map[string]int `json:"skills" validate:"dive,keys,skillname,endkeys,min=0,max=5"`
		Preferences map[string]int `json:"preferences" validate:"dive,keys,skillname,endkeys,min=0,max=5"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	profile, err := newProfile(req.Skills, req.Preferences)
	if err != nil {
		h.appErrorResponse(w, r, err, nil)
		return
	}

	// 检测邮箱是否已被占用
	isExists, err := h.repository.CheckEmailIfExists(req.Email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if isExists {
		h.errorResponse(w, r, "邮箱已被占用")
		return
	}

	employee := &domain.Employee{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Profile:  profile,
	}

	if err := h.repository.CreateEmployee(employee); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "employees_username_key":
				h.badRequest(w, r, errors.New("用户名已存在"))
			case "employees_email_key":
				h.badRequest(w, r, errors.New("邮箱已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "员工创建成功", employee)
}

func newProfile(skills, preferences map[string]int) (domain.Profile, error) {
	s, err := domain.NewSkillLevels(skills)
	if err != nil {
		return domain.Profile{}, err
	}
	p, err := domain.NewPreferenceLevels(preferences)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{Skills: s, Preferences: p}, nil
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)
	h.successResponse(w, r, "获取员工信息成功", employee)
}

// UpdateEmployeeProfile 技能和偏好整体替换，未提供的字段保持不变
func (h *Handler) UpdateEmployeeProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName    *string         `json:"fullName" validate:"omitempty,min=1"`
		Skills      *map[string]int `json:"skills" validate:"omitempty,dive,keys,skillname,endkeys,min=0,max=5"`
		Preferences *map[string]int `json:"preferences" validate:"omitempty,dive,keys,skillname,endkeys,min=0,max=5"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	if req.FullName != nil {
		employee.FullName = *req.FullName
	}
	if req.Skills != nil {
		skills, err := domain.NewSkillLevels(*req.Skills)
		if err != nil {
			h.appErrorResponse(w, r, err, nil)
			return
		}
		employee.Profile.Skills = skills
	}
	if req.Preferences != nil {
		preferences, err := domain.NewPreferenceLevels(*req.Preferences)
		if err != nil {
			h.appErrorResponse(w, r, err, nil)
			return
		}
		employee.Profile.Preferences = preferences
	}

	if err := h.repository.UpdateEmployeeProfile(employee); err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "员工信息更新成功", employee)
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	slots, err := h.repository.GetAvailabilitySlotsByEmployeeID(employee.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取空闲时间成功", slots)
}

func (h *Handler) AddAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slots []struct {
			StartTime time.Time `json:"startTime" validate:"required"`
			EndTime   time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
		} `json:"slots" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	existing, err := h.repository.GetAvailabilitySlotsByEmployeeID(employee.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	slots := make([]*domain.AvailabilitySlot, 0, len(req.Slots))
	for _, s := range req.Slots {
		slots = append(slots, &domain.AvailabilitySlot{
			EmployeeID: employee.ID,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
		})
	}

	if err := utils.ValidateAvailabilitySlots(append(existing, slots...)); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateAvailabilitySlots(slots); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "空闲时间添加成功", slots)
}

func (h *Handler) ClearAvailability(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	count, err := h.repository.DeleteAvailabilitySlotsByEmployeeID(employee.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "空闲时间已清空", map[string]int64{"deleted": count})
}
