// Package scheduler 使用遗传算法为项目成员寻找一周内最合适的会议时间
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

type Request struct {
	Project       *domain.Project
	Slots         []*domain.AvailabilitySlot
	DurationHours float64
	Now           time.Time
	Location      *time.Location
}

type Driver struct {
	cfg    Config
	logger *slog.Logger
}

func NewDriver(cfg Config, logger *slog.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{cfg: cfg, logger: logger.With("component", "scheduler")}, nil
}

func (d *Driver) Config() Config {
	return d.cfg
}

// DurationMinutes 会议时长按整分钟计，超过一个工作日的时长不合法
func DurationMinutes(hours float64) (int, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return 0, domain.NewError(domain.KindInput, "会议时长必须大于 0")
	}
	minutes := int(hours * 60)
	if minutes < 1 {
		return 0, domain.NewError(domain.KindInput, "会议时长不能少于 1 分钟")
	}
	if minutes > MaxDurationMinutes {
		return 0, domain.NewError(domain.KindInput, "会议时长不能超过 8 小时")
	}
	return minutes, nil
}

// Run 运行遗传算法，随机数种子为项目 ID，相同输入总是得到相同结果
func (d *Driver) Run(ctx context.Context, req Request) (*domain.MeetingResult, error) {
	if req.Project == nil {
		err := domain.NewError(domain.KindNotFound, "项目不存在")
		return d.fail(0, err), err
	}

	result := &domain.MeetingResult{ProjectID: req.Project.ID}

	if len(req.Project.Members) == 0 {
		err := domain.NewError(domain.KindInput, "项目没有成员")
		return d.fail(req.Project.ID, err), err
	}

	durationMinutes, err := DurationMinutes(req.DurationHours)
	if err != nil {
		return d.fail(req.Project.ID, err), err
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	index := NewAvailabilityIndex(req.Project.Members, req.Slots)
	ev := NewEvaluator(index, durationMinutes, WeekStart(now, req.Location))
	rng := rand.New(rand.NewSource(req.Project.ID))
	hof := newHallOfFame(d.cfg.HallOfFameSize)

	d.logger.Info("开始寻找会议时间",
		"projectID", req.Project.ID,
		"members", index.MemberCount(),
		"slots", index.SlotCount(),
		"durationMinutes", durationMinutes,
	)

	pop := make([]*Individual, d.cfg.PopulationSize)
	for i := range pop {
		pop[i] = randomIndividual(rng)
	}

	n, err := evaluate(ctx, ev, pop, d.cfg.Workers)
	if err != nil {
		err = domain.Wrap(err, domain.KindComputation, "计算适应度失败")
		return d.fail(req.Project.ID, err), err
	}
	result.Evaluations += n
	hof.update(pop)

	for gen := 1; gen <= d.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			err = domain.Wrap(err, domain.KindComputation, "会议时间计算被取消")
			return d.fail(req.Project.ID, err), err
		}

		offspring := selectTournament(rng, pop, len(pop), d.cfg.TournamentSize)
		vary(rng, offspring, d.cfg)

		n, err := evaluate(ctx, ev, offspring, d.cfg.Workers)
		if err != nil {
			err = domain.Wrap(err, domain.KindComputation, "计算适应度失败")
			return d.fail(req.Project.ID, err), err
		}
		result.Evaluations += n
		hof.update(offspring)

		pop = offspring
		result.Generations = gen

		d.logger.Debug("迭代完成", "projectID", req.Project.ID, "generation", gen, "best", hof.best().fitness)
	}

	best := hof.best()
	start, end := ev.Window(best.genes[0])
	attendees := []int64{}
	if ev.InWindow(best.genes[0]) {
		attendees = index.AvailableMembers(start, end)
	}

	total := index.MemberCount()
	result.BestSlot = &domain.MeetingSlot{
		Start:         start,
		End:           end,
		AttendeeCount: int(math.Round(best.fitness * float64(total))),
		TotalMembers:  total,
		Fitness:       best.fitness,
		Attendees:     attendees,
	}
	result.Status = domain.RunStatusSuccess
	result.Message = fmt.Sprintf("找到会议时间，%d/%d 名成员可以参加", result.BestSlot.AttendeeCount, total)

	d.logger.Info("会议时间计算完成",
		"projectID", req.Project.ID,
		"start", start,
		"fitness", best.fitness,
		"evaluations", result.Evaluations,
	)

	return result, nil
}

func (d *Driver) fail(projectID int64, err error) *domain.MeetingResult {
	d.logger.Error("会议时间计算失败", "projectID", projectID, "error", err)
	return &domain.MeetingResult{
		ProjectID: projectID,
		Status:    domain.RunStatusError,
		Message:   err.Error(),
	}
}
