package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string `mapstructure:"APP_PORT"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBScheme   string `mapstructure:"DB_SCHEME"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// --- S3 (скриншоты проектов) ---
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle bool   `mapstructure:"S3_PATH_STYLE"`

	// --- Auth ---
	AuthJWTSecret   string `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer      string `mapstructure:"AUTH_ISSUER"`
	AuthTokenTTLMin int    `mapstructure:"AUTH_TOKEN_TTL_MIN"`

	// --- Кэш ---
	CacheDefaultTTLSeconds int `mapstructure:"CACHE_DEFAULT_TTL_SECONDS"`
	CacheListTTLSeconds    int `mapstructure:"CACHE_LIST_TTL_SECONDS"`

	// --- Realtime / уведомления ---
	WSMaxMessageBytes         int64 `mapstructure:"WS_MAX_MESSAGE_BYTES"`
	NotifyPollIntervalSeconds int   `mapstructure:"NOTIFY_POLL_INTERVAL_SECONDS"`

	// --- Внешние сервисы (превью-скриншоты, AI-оценка) ---
	PreviewURL            string `mapstructure:"PREVIEW_URL"`
	PreviewTimeoutSeconds int    `mapstructure:"PREVIEW_TIMEOUT_SECONDS"`
	EvalURL               string `mapstructure:"EVAL_URL"`
	EvalTimeoutSeconds    int    `mapstructure:"EVAL_TIMEOUT_SECONDS"`

	SlowOpThresholdMS int `mapstructure:"SLOW_OP_THRESHOLD_MS"`
}

// String реализует интерфейс Stringer (секреты маскируем)
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  DBHost: %s\n", c.DBHost))
	sb.WriteString(fmt.Sprintf("  DBPort: %d\n", c.DBPort))
	sb.WriteString(fmt.Sprintf("  DBUser: %s\n", c.DBUser))
	sb.WriteString(fmt.Sprintf("  DBName: %s\n", c.DBName))
	sb.WriteString(fmt.Sprintf("  DBScheme: %s\n", c.DBScheme))
	sb.WriteString(masked("DBPassword", c.DBPassword))
	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	sb.WriteString(masked("RedisPassword", c.RedisPassword))
	sb.WriteString(fmt.Sprintf("  S3Endpoint: %s\n", c.S3Endpoint))
	sb.WriteString(fmt.Sprintf("  S3Region: %s\n", c.S3Region))
	sb.WriteString(fmt.Sprintf("  S3Bucket: %s\n", c.S3Bucket))
	sb.WriteString(masked("S3AccessKey", c.S3AccessKey))
	sb.WriteString(masked("S3SecretKey", c.S3SecretKey))
	sb.WriteString(masked("AuthJWTSecret", c.AuthJWTSecret))
	sb.WriteString(fmt.Sprintf("  AuthIssuer: %s\n", c.AuthIssuer))
	sb.WriteString(fmt.Sprintf("  AuthTokenTTL: %s\n", c.AuthTokenTTL()))
	sb.WriteString(fmt.Sprintf("  CacheDefaultTTL: %s\n", c.CacheDefaultTTL()))
	sb.WriteString(fmt.Sprintf("  CacheListTTL: %s\n", c.CacheListTTL()))
	sb.WriteString(fmt.Sprintf("  WSMaxMessageBytes: %d\n", c.WSMaxMessageBytes))
	sb.WriteString(fmt.Sprintf("  NotifyPollInterval: %s\n", c.NotifyPollInterval()))
	sb.WriteString(fmt.Sprintf("  PreviewURL: %s\n", c.PreviewURL))
	sb.WriteString(fmt.Sprintf("  PreviewTimeout: %s\n", c.PreviewTimeout()))
	sb.WriteString(fmt.Sprintf("  EvalURL: %s\n", c.EvalURL))
	sb.WriteString(fmt.Sprintf("  EvalTimeout: %s\n", c.EvalTimeout()))
	sb.WriteString(fmt.Sprintf("  SlowOpThreshold: %s\n", c.SlowOpThreshold()))
	return sb.String()
}

func masked(name, val string) string {
	if val != "" {
		return fmt.Sprintf("  %s: ********\n", name)
	}
	return fmt.Sprintf("  %s: (empty)\n", name)
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	keys := []string{
		"APP_ENV", "APP_PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SCHEME",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD",
		"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_USE_SSL", "S3_PATH_STYLE",
		"AUTH_JWT_SECRET", "AUTH_ISSUER", "AUTH_TOKEN_TTL_MIN",
		"CACHE_DEFAULT_TTL_SECONDS", "CACHE_LIST_TTL_SECONDS",
		"WS_MAX_MESSAGE_BYTES", "NOTIFY_POLL_INTERVAL_SECONDS",
		"PREVIEW_URL", "PREVIEW_TIMEOUT_SECONDS",
		"EVAL_URL", "EVAL_TIMEOUT_SECONDS",
		"SLOW_OP_THRESHOLD_MS",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AppPort == "" {
		c.AppPort = ":8080"
	}
	if c.DBScheme == "" {
		c.DBScheme = "vibe"
	}
	if c.AuthTokenTTLMin <= 0 {
		c.AuthTokenTTLMin = 24 * 60
	}
	if c.CacheDefaultTTLSeconds <= 0 {
		c.CacheDefaultTTLSeconds = 300
	}
	if c.CacheListTTLSeconds <= 0 {
		c.CacheListTTLSeconds = 120
	}
	if c.WSMaxMessageBytes <= 0 {
		c.WSMaxMessageBytes = 4096
	}
	if c.NotifyPollIntervalSeconds <= 0 {
		c.NotifyPollIntervalSeconds = 60
	}
	if c.PreviewTimeoutSeconds <= 0 {
		c.PreviewTimeoutSeconds = 25
	}
	if c.EvalTimeoutSeconds <= 0 {
		c.EvalTimeoutSeconds = 30
	}
	if c.SlowOpThresholdMS <= 0 {
		c.SlowOpThresholdMS = 500
	}
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

func (c *Config) AuthTokenTTL() time.Duration {
	return time.Duration(c.AuthTokenTTLMin) * time.Minute
}

func (c *Config) CacheDefaultTTL() time.Duration {
	return time.Duration(c.CacheDefaultTTLSeconds) * time.Second
}

func (c *Config) CacheListTTL() time.Duration {
	return time.Duration(c.CacheListTTLSeconds) * time.Second
}

func (c *Config) NotifyPollInterval() time.Duration {
	return time.Duration(c.NotifyPollIntervalSeconds) * time.Second
}

func (c *Config) PreviewTimeout() time.Duration {
	return time.Duration(c.PreviewTimeoutSeconds) * time.Second
}

func (c *Config) EvalTimeout() time.Duration {
	return time.Duration(c.EvalTimeoutSeconds) * time.Second
}

func (c *Config) SlowOpThreshold() time.Duration {
	return time.Duration(c.SlowOpThresholdMS) * time.Millisecond
}
