package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Timezone    string `env:"TIMEZONE" envDefault:"Asia/Shanghai"` // 工作日历和会议时间所使用的时区
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"30"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Seed struct {
		Employees       int `env:"EMPLOYEES" envDefault:"30"`
		Projects        int `env:"PROJECTS" envDefault:"5"`
		TasksPerProject int `env:"TASKS_PER_PROJECT" envDefault:"8"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN" envDefault:"example.com"`
		SMTP       struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host           string `env:"HOST" envDefault:"localhost"`
		Port           int    `env:"PORT" envDefault:"6379"`
		Password       string `env:"PASSWORD"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Lock struct {
		TTL int `env:"TTL" envDefault:"120"` // 同一项目的计算锁的过期时间（秒）
	} `envPrefix:"LOCK_"`
	Assignment struct {
		WorkloadWeight   float64 `env:"WORKLOAD_WEIGHT" envDefault:"2"`
		SkillWeight      float64 `env:"SKILL_WEIGHT" envDefault:"5"`
		PreferenceWeight float64 `env:"PREFERENCE_WEIGHT" envDefault:"3"`
		MaxStrikes       int32   `env:"MAX_STRIKES" envDefault:"5"`
		DeadlineBuffer   float64 `env:"DEADLINE_BUFFER" envDefault:"1.25"`
	} `envPrefix:"ASSIGNMENT_"`
	Scheduler struct {
		PopulationSize   int     `env:"POPULATION_SIZE" envDefault:"50"`
		Generations      int     `env:"GENERATIONS" envDefault:"40"`
		CrossoverProb    float64 `env:"CROSSOVER_PROB" envDefault:"0.5"`
		SwapProb         float64 `env:"SWAP_PROB" envDefault:"0.5"`
		MutationProb     float64 `env:"MUTATION_PROB" envDefault:"0.2"`
		GeneMutationProb float64 `env:"GENE_MUTATION_PROB" envDefault:"0.1"`
		TournamentSize   int     `env:"TOURNAMENT_SIZE" envDefault:"3"`
		HallOfFameSize   int     `env:"HALL_OF_FAME_SIZE" envDefault:"1"`
		Workers          int     `env:"WORKERS" envDefault:"1"`
		DefaultDuration  float64 `env:"DEFAULT_DURATION" envDefault:"1"` // 默认会议时长（小时）
	} `envPrefix:"SCHEDULER_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// Location 加载配置中的时区
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
