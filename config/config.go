package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	S3        S3Config        `mapstructure:"s3"`
	AI        AIConfig        `mapstructure:"ai"`
	Workers   WorkersConfig   `mapstructure:"workers"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

func (s ServerConfig) Addr() string { return fmt.Sprintf(":%d", s.Port) }

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Addr          string        `mapstructure:"addr"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	RoomPageTTL   time.Duration `mapstructure:"room_page_ttl"`
	ReflectionTTL time.Duration `mapstructure:"reflection_ttl"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

// Enabled reports whether avatar uploads can be stored.
func (s S3Config) Enabled() bool { return s.Bucket != "" }

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WorkersConfig struct {
	FanoutWorkers      int           `mapstructure:"fanout_workers"`
	FanoutBatchSize    int           `mapstructure:"fanout_batch_size"`
	FanoutClaimLimit   int           `mapstructure:"fanout_claim_limit"`
	FanoutPollInterval time.Duration `mapstructure:"fanout_poll_interval"`
	NotifierWorkers    int           `mapstructure:"notifier_workers"`
	NotifierQueueSize  int           `mapstructure:"notifier_queue_size"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type SentryConfig struct {
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// Load 读取配置：默认值 < config.yaml < 环境变量（SUNFLOWER_ 前缀）
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("SUNFLOWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查必须的配置项
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.AI.Enabled && c.AI.BaseURL == "" {
		return fmt.Errorf("ai.base_url is required when ai.enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "sunflower.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.room_page_ttl", 30*time.Second)
	v.SetDefault("redis.reflection_ttl", 24*time.Hour)

	// keys without a meaningful default still need registering so env overrides reach Unmarshal
	for _, key := range []string{
		"redis.password", "jwt.secret", "s3.bucket", "s3.endpoint", "s3.access_key_id",
		"s3.secret_access_key", "s3.public_base_url", "ai.base_url", "ai.api_key", "sentry.dsn",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("jwt.issuer", "sunflower-post")
	v.SetDefault("jwt.ttl", 72*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("s3.region", "us-east-1")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 15*time.Second)

	v.SetDefault("workers.fanout_workers", 2)
	v.SetDefault("workers.fanout_batch_size", 500)
	v.SetDefault("workers.fanout_claim_limit", 64)
	v.SetDefault("workers.fanout_poll_interval", 500*time.Millisecond)
	v.SetDefault("workers.notifier_workers", 2)
	v.SetDefault("workers.notifier_queue_size", 1024)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 10)
	v.SetDefault("rate_limit.burst", 30)

	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "sunflower-post")
	v.SetDefault("tracing.insecure", true)
}
