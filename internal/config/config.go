package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string         `json:"env"`
	Http     HttpConfig     `json:"http"`
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
	APIKey   string         `json:"api_key,omitempty"`
	FCM      FCMConfig      `json:"fcm"`
	Expo     ExpoConfig     `json:"expo"`
	Fanout   FanoutConfig   `json:"fanout"`
}

type HttpConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode"`

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
}

type FCMConfig struct {
	SendURL      string `json:"send_url"`
	SubscribeURL string `json:"subscribe_url"`
	ServerKey    string `json:"server_key,omitempty"`
	Disabled     bool   `json:"disabled"`
}

type ExpoConfig struct {
	SendURL     string `json:"send_url"`
	AccessToken string `json:"access_token,omitempty"`
	Disabled    bool   `json:"disabled"`
}

type FanoutConfig struct {
	BatchSize         int           `json:"batch_size"`
	DefaultTTLSeconds int           `json:"default_ttl_seconds"`
	DefaultRadiusM    float64       `json:"default_radius_m"`
	ClaimTTL          time.Duration `json:"claim_ttl"`
	QueueKey          string        `json:"queue_key"`
}

func Load() (*Config, error) {

	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Warn(".env load warning", slog.Any("error", err))
	}

	cfg := &Config{
		Env: getEnv("ENV", "local"),
		Http: HttpConfig{
			Port:            getEnv("HTTP_PORT", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "pg-local"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Database:        getEnv("POSTGRES_DB", "vigia_db"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConns:        20,
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "redis-local:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		APIKey: getEnv("API_KEY", ""),
		FCM: FCMConfig{
			SendURL:      getEnv("FCM_SEND_URL", "https://fcm.googleapis.com/fcm/send"),
			SubscribeURL: getEnv("FCM_SUBSCRIBE_URL", "https://iid.googleapis.com/iid/v1"),
			ServerKey:    getEnv("FCM_SERVER_KEY", ""),
			Disabled:     getEnvBool("FCM_DISABLED", false),
		},
		Expo: ExpoConfig{
			SendURL:     getEnv("EXPO_SEND_URL", "https://exp.host/--/api/v2/push/send"),
			AccessToken: getEnv("EXPO_ACCESS_TOKEN", ""),
			Disabled:    getEnvBool("EXPO_DISABLED", false),
		},
		Fanout: FanoutConfig{
			BatchSize:         getEnvInt("FANOUT_BATCH_SIZE", 100),
			DefaultTTLSeconds: getEnvInt("FANOUT_DEFAULT_TTL_SECONDS", 900),
			DefaultRadiusM:    float64(getEnvInt("FANOUT_DEFAULT_RADIUS_M", 1000)),
			ClaimTTL:          getEnvDuration("FANOUT_CLAIM_TTL", 6*time.Hour),
			QueueKey:          getEnv("FANOUT_QUEUE_KEY", "fanout:queue"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdLogger.Info("Config loaded successfully",
		slog.String("env", cfg.Env),
		slog.String("http_port", cfg.Http.Port),
		slog.String("postgres_db", cfg.Postgres.Database),
		slog.String("redis_addr", cfg.Redis.Addr),
		slog.Bool("fcm_disabled", cfg.FCM.Disabled),
		slog.Bool("expo_disabled", cfg.Expo.Disabled))

	return cfg, nil
}

func (c *Config) Validate() error {

	if c.Http.Port == "" || c.Http.Port[0] != ':' {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}

	if c.Postgres.Host == "" {
		return errors.New("POSTGRES_HOST required")
	}

	if c.Fanout.BatchSize < 1 || c.Fanout.BatchSize > 100 {
		return errors.New("FANOUT_BATCH_SIZE must be within 1..100")
	}

	if !c.FCM.Disabled && c.FCM.ServerKey == "" {
		return errors.New("FCM_SERVER_KEY required unless FCM_DISABLED=true")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
