package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/notify"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/tracking"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var interval time.Duration
	flag.DurationVar(&interval, "interval", 0, "检查的间隔，为 0 时只检查一次")
	flag.Parse()

	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	logger = logger.With("component", "tracking")

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		os.Exit(1)
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", "error", err)
		return
	}
	defer ch.Close()

	if _, err := notify.DeclareQueue(ch); err != nil {
		logger.Error("无法声明队列", "error", err)
		return
	}

	publisher := notify.NewPublisher(ch, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second, logger)

	/**********************************************
	 * 检查逾期任务
	 **********************************************/
	if interval <= 0 {
		if err := sweep(repo, publisher, cfg.Assignment.MaxStrikes, logger); err != nil {
			logger.Error("逾期检查失败", "error", err)
			os.Exit(1)
		}
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("定时逾期检查已启动", "interval", interval)
	for {
		if err := sweep(repo, publisher, cfg.Assignment.MaxStrikes, logger); err != nil {
			logger.Error("逾期检查失败", "error", err)
		}

		select {
		case <-quit:
			logger.Info("逾期检查已停止")
			return
		case <-ticker.C:
		}
	}
}

func sweep(repo *repository.Repository, publisher *notify.Publisher, maxStrikes int32, logger *slog.Logger) error {
	now := time.Now()

	tasks, err := repo.GetOverdueTasks(now)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		logger.Info("没有逾期任务")
		return nil
	}

	employees, err := repo.GetAllEmployees()
	if err != nil {
		return err
	}

	report := tracking.Sweep(tasks, employees, now)
	for _, id := range report.Skipped {
		logger.Warn("逾期任务没有负责人，跳过", "taskID", id)
	}

	applied, err := repo.ApplySweep(report)
	if err != nil {
		return err
	}

	byID := make(map[int64]*domain.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	msgs := make([]domain.MailMessage, 0, len(applied))
	for _, strike := range applied {
		logger.Info("任务已逾期", "taskID", strike.TaskID, "employeeID", strike.EmployeeID, "strikeCount", strike.StrikeCount)
		if e, ok := byID[strike.EmployeeID]; ok {
			msgs = append(msgs, notify.StrikeIssued(e, strike.TaskTitle, strike.StrikeCount, maxStrikes))
		}
	}
	sent := publisher.PublishAll(msgs)

	logger.Info("逾期检查完成",
		"overdue", len(tasks),
		"strikes", len(applied),
		"skipped", len(report.Skipped),
		"mails", sent,
	)
	return nil
}
