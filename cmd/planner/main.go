package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/assignment"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/snapshot"

	_ "time/tzdata"
)

type output struct {
	Assignment *domain.AssignmentResult `json:"assignment"`
	Meeting    *domain.MeetingResult    `json:"meeting"`
	Tasks      []*domain.Task           `json:"tasks"`
}

func main() {
	var (
		file     string
		duration float64
		nowRaw   string
		timezone string
		workers  int
	)

	flag.StringVar(&file, "snapshot", "", "项目快照文件 (YAML)")
	flag.Float64Var(&duration, "duration", 1, "会议时长（小时）")
	flag.StringVar(&nowRaw, "now", "", "当前时间 (RFC3339)，默认为系统时间")
	flag.StringVar(&timezone, "timezone", "Asia/Shanghai", "工作日历所使用的时区")
	flag.IntVar(&workers, "workers", 1, "并行计算适应度的协程数")
	flag.Parse()

	// 标准输出只用于输出结果
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if file == "" {
		logger.Error("未指定快照文件")
		os.Exit(2)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Error("无法加载时区", "timezone", timezone, "error", err)
		os.Exit(2)
	}

	now := time.Now().In(loc)
	if nowRaw != "" {
		now, err = time.Parse(time.RFC3339, nowRaw)
		if err != nil {
			logger.Error("当前时间格式错误", "now", nowRaw, "error", err)
			os.Exit(2)
		}
	}

	snap, err := snapshot.LoadFile(file)
	if err != nil {
		logger.Error("无法读取快照", "file", file, "error", err)
		os.Exit(1)
	}

	opts := assignment.DefaultOptions()
	opts.Calendar = calendar.New(loc)
	opts.Now = func() time.Time { return now }
	opts.Logger = logger
	engine, err := assignment.NewEngine(opts)
	if err != nil {
		logger.Error("无法创建分配引擎", "error", err)
		os.Exit(1)
	}

	cfg := scheduler.DefaultConfig()
	cfg.Workers = workers
	driver, err := scheduler.NewDriver(cfg, logger)
	if err != nil {
		logger.Error("无法创建会议调度器", "error", err)
		os.Exit(1)
	}

	out := output{}
	out.Assignment = engine.Run(assignment.Snapshot{Project: snap.Project})
	out.Tasks = snap.Project.Tasks

	// 会议调度失败时仍然输出分配结果
	out.Meeting, err = driver.Run(context.Background(), scheduler.Request{
		Project:       snap.Project,
		Slots:         snap.Slots,
		DurationHours: duration,
		Now:           now,
		Location:      loc,
	})
	if err != nil {
		logger.Error("会议时间计算失败", "error", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("无法输出结果", "error", err)
		os.Exit(1)
	}

	if out.Assignment.Status == domain.RunStatusError || out.Meeting.Status == domain.RunStatusError {
		os.Exit(1)
	}
}
