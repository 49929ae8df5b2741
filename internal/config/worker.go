package config

import (
	"time"

	"github.com/spf13/viper"
)

type WorkerRedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type QueueConfig struct {
	ClaimInterval time.Duration
	MinIdle       time.Duration
}

type WorkerConfig struct {
	Environment string
	LogLevel    string
	Postgres    PostgresConfig
	Redis       WorkerRedisConfig
	Storage     StorageConfig
	Queues      QueueConfig
	Stats       StatsConfig
}

func LoadWorker() (*WorkerConfig, error) {
	v := newViper("worker", "REVIEWHUB_WORKER")
	setWorkerDefaults(v)

	var cfg WorkerConfig
	if err := read(v, &cfg); err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, ErrMissingDSN
	}
	return &cfg, nil
}

func setWorkerDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("loglevel", "info")

	setStoreDefaults(v)
	v.SetDefault("postgres.automigrate", false)

	v.SetDefault("redis.stream", "reviews:events")
	v.SetDefault("redis.group", "review-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("queues.claiminterval", "10s")
	v.SetDefault("queues.minidle", "2m")

	v.SetDefault("stats.cachettl", "1h")
}
