package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const minJWTSecretLength = 32

var (
	ErrMissingJWTSecret = errors.New("security.jwtsecret must be set")
	ErrWeakJWTSecret    = fmt.Errorf("security.jwtsecret must be at least %d bytes", minJWTSecretLength)
	ErrMissingDSN       = errors.New("postgres.dsn must be set")
	ErrTokenTTL         = errors.New("security.tokenttl must be positive")
	ErrRateLimitWindow  = errors.New("ratelimit.window and ratelimit.requests must be positive")
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// TrustedProxies may set the client IP via X-Forwarded-For. Empty
	// means the client IP is always the connection's remote address.
	TrustedProxies []string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketExports string
	UseSSL        bool
	Region        string
}

type SecurityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type EventsConfig struct {
	Stream string
}

type StatsConfig struct {
	CacheTTL time.Duration
}

type JobsConfig struct {
	Enabled        bool
	StatsSchedule  string
	ExportSchedule string
}

type AppConfig struct {
	Environment      string
	LogLevel         string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	RateLimit        RateLimitConfig
	Events           EventsConfig
	Stats            StatsConfig
	Jobs             JobsConfig
	AllowCORSOrigins []string
}

// Load reads config.yaml (optional) and REVIEWHUB_* environment variables.
// Secrets have no defaults; Validate rejects a config without them.
func Load() (*AppConfig, error) {
	v := newViper("config", "REVIEWHUB")
	setDefaults(v)

	var cfg AppConfig
	if err := read(v, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Security.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return ErrWeakJWTSecret
	}
	if c.Postgres.DSN == "" {
		return ErrMissingDSN
	}
	if c.Security.TokenTTL <= 0 {
		return ErrTokenTTL
	}
	if c.RateLimit.Enabled && (c.RateLimit.Window <= 0 || c.RateLimit.Requests <= 0) {
		return ErrRateLimitWindow
	}
	return nil
}

func newViper(name string, envPrefix string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal unless bound.
	for _, key := range []string{
		"postgres.dsn",
		"redis.password",
		"security.jwtsecret",
		"storage.endpoint",
		"storage.accesskey",
		"storage.secretkey",
	} {
		_ = v.BindEnv(key)
	}

	return v
}

func read(v *viper.Viper, out any) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := v.Unmarshal(out, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("loglevel", "")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.trustedproxies", []string{})

	setStoreDefaults(v)

	v.SetDefault("security.tokenttl", "24h")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests", 10)
	v.SetDefault("ratelimit.window", "1m")

	v.SetDefault("events.stream", "reviews:events")

	v.SetDefault("stats.cachettl", "1h")

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.statsschedule", "0 0 * * * *")
	v.SetDefault("jobs.exportschedule", "0 30 2 * * *")

	v.SetDefault("allowcorsorigins", []string{})
}

func setStoreDefaults(v *viper.Viper) {
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", true)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.bucketexports", "reviewhub-exports")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
}
