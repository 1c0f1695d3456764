// Package config loads service settings from a TOML file with secrets taken from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Backends очереди уведомлений
const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
)

// Переменные окружения с секретами
const (
	EnvDBPassword     = "DB_PASSWORD"
	EnvSendGridAPIKey = "SENDGRID_API_KEY"
	EnvRedisPassword  = "REDIS_PASSWORD"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	App           AppConfig           `toml:"app"`
	Notifications NotificationsConfig `toml:"notifications"`
	SendGrid      SendGridConfig      `toml:"sendgrid"`
	Redis         RedisConfig         `toml:"redis"`
	Jobs          JobsConfig          `toml:"jobs"`
}

type ServerConfig struct {
	HTTPPort        int      `toml:"http_port"`
	ReadTimeout     int      `toml:"read_timeout"`     // секунды
	WriteTimeout    int      `toml:"write_timeout"`    // секунды
	IdleTimeout     int      `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int      `toml:"shutdown_timeout"` // секунды
	CORSOrigins     []string `toml:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	TxMaxAttempts   int    `toml:"tx_max_attempts"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

type AppConfig struct {
	Timezone string `toml:"timezone"` // IANA, например "Europe/Moscow"
}

type NotificationsConfig struct {
	Enabled       bool    `toml:"enabled"`
	Queue         string  `toml:"queue"` // memory | redis
	QueueSize     int     `toml:"queue_size"`
	Workers       int     `toml:"workers"`
	SendTimeout   int     `toml:"send_timeout"` // секунды
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`
	StaleAfter    int     `toml:"stale_after"` // секунды; после этого pending письмо можно забрать через retry
}

type SendGridConfig struct {
	APIKey    string `toml:"api_key"`
	FromEmail string `toml:"from_email"`
	FromName  string `toml:"from_name"`
	Host      string `toml:"host"`
	Timeout   int    `toml:"timeout"` // секунды
}

type RedisConfig struct {
	Address    string `toml:"address"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	QueueKey   string `toml:"queue_key"`
	PopTimeout int    `toml:"pop_timeout"` // секунды
}

type JobsConfig struct {
	CompletionEnabled  bool   `toml:"completion_enabled"`
	CompletionSchedule string `toml:"completion_schedule"` // cron, 5 полей
}

// Load читает TOML файл, подмешивает секреты из окружения (и .env, если есть) и проверяет результат
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default настройки, которые перекрываются файлом
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			TxMaxAttempts:   5,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			ServiceName: "reservation_service",
			Path:        "/metrics",
		},
		App: AppConfig{
			Timezone: "UTC",
		},
		Notifications: NotificationsConfig{
			Enabled:       true,
			Queue:         QueueMemory,
			QueueSize:     1000,
			Workers:       2,
			SendTimeout:   10,
			RatePerSecond: 10,
			Burst:         20,
			StaleAfter:    300,
		},
		SendGrid: SendGridConfig{
			FromName: "Reservations",
			Timeout:  10,
		},
		Redis: RedisConfig{
			Address:    "localhost:6379",
			PoolSize:   10,
			QueueKey:   "reservations:notifications",
			PopTimeout: 1,
		},
		Jobs: JobsConfig{
			CompletionEnabled:  true,
			CompletionSchedule: "5 0 * * *",
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvSendGridAPIKey); v != "" {
		c.SendGrid.APIKey = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Redis.Password = v
	}
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port %d is out of range", c.Server.HTTPPort))
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		problems = append(problems, "database.host and database.dbname are required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("app.timezone %q: %v", c.App.Timezone, err))
	}

	if c.Notifications.Enabled {
		switch c.Notifications.Queue {
		case QueueMemory:
			if c.Notifications.QueueSize <= 0 {
				problems = append(problems, "notifications.queue_size must be positive")
			}
		case QueueRedis:
			if c.Redis.Address == "" || c.Redis.QueueKey == "" {
				problems = append(problems, "redis.address and redis.queue_key are required for the redis queue")
			}
		default:
			problems = append(problems, fmt.Sprintf("notifications.queue must be %q or %q, got %q",
				QueueMemory, QueueRedis, c.Notifications.Queue))
		}
		if c.Notifications.Workers <= 0 {
			problems = append(problems, "notifications.workers must be positive")
		}
		if c.Notifications.RatePerSecond < 0 {
			problems = append(problems, "notifications.rate_per_second must not be negative")
		}
	}

	if c.Notifications.StaleAfter <= c.Notifications.SendTimeout {
		problems = append(problems, "notifications.stale_after must be greater than notifications.send_timeout")
	}

	if c.Jobs.CompletionEnabled {
		if _, err := cron.ParseStandard(c.Jobs.CompletionSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("jobs.completion_schedule %q: %v", c.Jobs.CompletionSchedule, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Location часовой пояс сервиса; "сегодня" считается в нем
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
