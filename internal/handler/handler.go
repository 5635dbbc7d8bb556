package handler

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/assignment"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/notify"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/scheduler"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	publisher   *notify.Publisher
	redisClient *redis.Client
	calendar    *calendar.Calendar
	engine      *assignment.Engine
	driver      *scheduler.Driver

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh notify.Channel, rdb *redis.Client) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	cal := calendar.New(loc)

	engine, err := assignment.NewEngine(AssignmentOptions(cfg, cal))
	if err != nil {
		return nil, err
	}

	driver, err := scheduler.NewDriver(SchedulerConfig(cfg), slog.Default())
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		publisher:   notify.NewPublisher(mailCh, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second, slog.Default()),
		redisClient: rdb,
		calendar:    cal,
		engine:      engine,
		driver:      driver,

		Mux: chi.NewRouter(),
	}, nil
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}
	if err := registerCustomValidations(validate, trans); err != nil {
		return nil, nil, err
	}
	return validate, trans, nil
}

// AssignmentOptions 根据配置构造任务分配的参数
func AssignmentOptions(cfg *config.Config, cal *calendar.Calendar) assignment.Options {
	opts := assignment.DefaultOptions()
	opts.Weights.Workload = cfg.Assignment.WorkloadWeight
	opts.Weights.Skill = cfg.Assignment.SkillWeight
	opts.Weights.Preference = cfg.Assignment.PreferenceWeight
	opts.MaxStrikes = cfg.Assignment.MaxStrikes
	opts.DeadlineBuffer = cfg.Assignment.DeadlineBuffer
	opts.Calendar = cal
	return opts
}

// SchedulerConfig 根据配置构造遗传算法的参数
func SchedulerConfig(cfg *config.Config) scheduler.Config {
	c := scheduler.DefaultConfig()
	c.PopulationSize = cfg.Scheduler.PopulationSize
	c.Generations = cfg.Scheduler.Generations
	c.CrossoverProb = cfg.Scheduler.CrossoverProb
	c.SwapProb = cfg.Scheduler.SwapProb
	c.MutationProb = cfg.Scheduler.MutationProb
	c.GeneMutationProb = cfg.Scheduler.GeneMutationProb
	c.TournamentSize = cfg.Scheduler.TournamentSize
	c.HallOfFameSize = cfg.Scheduler.HallOfFameSize
	c.Workers = cfg.Scheduler.Workers
	return c
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/employees", func(r chi.Router) {
		r.Post("/", h.CreateEmployee)
		r.Get("/", h.GetAllEmployees)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.employee)
			r.Get("/", h.GetEmployee)
			r.Patch("/profile", h.UpdateEmployeeProfile)
			r.Route("/availability", func(r chi.Router) {
				r.Get("/", h.GetAvailability)
				r.Post("/", h.AddAvailability)
				r.Delete("/", h.ClearAvailability)
			})
		})
	})

	h.Mux.Route("/projects", func(r chi.Router) {
		r.Post("/", h.CreateProject)
		r.Get("/", h.GetAllProjects)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.project)
			r.Get("/", h.GetProject)
			r.Delete("/", h.DeleteProject)
			r.Post("/members", h.AddProjectMember)
			r.Delete("/members/{employeeID}", h.RemoveProjectMember)
			r.Get("/tasks", h.GetProjectTasks)
			r.Post("/tasks", h.CreateTask)
			r.Post("/run-assignment", h.RunAssignment)
			r.Get("/runs/{runID}", h.GetAssignmentRun)
			r.Post("/run-scheduler", h.RunScheduler)
		})
	})

	h.Mux.Route("/tasks/{id}", func(r chi.Router) {
		r.Use(h.task)
		r.Get("/", h.GetTask)
		r.Delete("/", h.DeleteTask)
		r.Post("/progress", h.UpdateTaskProgress)
	})
}
