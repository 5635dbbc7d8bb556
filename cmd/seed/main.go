package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/project-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "time/tzdata"
)

func main() {
	var op int
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机数据, 2: 从 CSV 文件插入员工)")
	flag.StringVar(&file, "file", seed.DefaultEmployeesFile, "员工 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("无法加载时区", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	// 创建数据库连接池
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

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if err := seed.SeedRandomData(repo, cfg, loc); err != nil {
			slog.Error("插入随机数据失败", "error", err)
			return
		}
		slog.Info("插入随机数据成功")
	case 2:
		seed.SeedEmployeesFromFile(repo, file)
	default:
		slog.Error("指定的操作非法")
	}
}
