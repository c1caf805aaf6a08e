package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/BurntSushi/toml"
)

var (
	// ErrInvalidConfig возвращается, когда конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация агента синхронизации заявок
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Database      DatabaseConfig      `toml:"database"`
	Backend       BackendConfig       `toml:"backend"`
	Realtime      RealtimeConfig      `toml:"realtime"`
	Notifications NotificationsConfig `toml:"notifications"`
	Journal       JournalConfig       `toml:"journal"`
}

// ServerConfig локальный HTTP API для UI-слоя (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// DatabaseConfig база журнала событий
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
}

// DSN собирает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// BackendConfig REST API маркетплейса
type BackendConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// RealtimeConfig websocket-канал push-событий
type RealtimeConfig struct {
	URL               string  `toml:"url"`
	HandshakeTimeout  int     `toml:"handshake_timeout"`  // секунды
	HeartbeatInterval int     `toml:"heartbeat_interval"` // секунды
	ReconnectRate     float64 `toml:"reconnect_rate"`     // попыток в секунду
	ReconnectBurst    int     `toml:"reconnect_burst"`
}

type NotificationsConfig struct {
	Capacity int `toml:"capacity"`
}

// JournalConfig журнал realtime-событий в PostgreSQL
type JournalConfig struct {
	Enabled    bool `toml:"enabled"`
	BufferSize int  `toml:"buffer_size"`
}

// Load читает конфигурацию из TOML-файла, применяет значения по умолчанию и валидирует
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8090
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "smc-request-sync"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 10
	}
	if c.Realtime.HandshakeTimeout == 0 {
		c.Realtime.HandshakeTimeout = 10
	}
	if c.Realtime.HeartbeatInterval == 0 {
		c.Realtime.HeartbeatInterval = 30
	}
	if c.Realtime.ReconnectRate == 0 {
		c.Realtime.ReconnectRate = 0.5
	}
	if c.Realtime.ReconnectBurst == 0 {
		c.Realtime.ReconnectBurst = 1
	}
	if c.Notifications.Capacity == 0 {
		c.Notifications.Capacity = 100
	}
	if c.Journal.BufferSize == 0 {
		c.Journal.BufferSize = 256
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("%w: backend.url is required", ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(c.Backend.URL); err != nil {
		return fmt.Errorf("%w: backend.url: %v", ErrInvalidConfig, err)
	}
	if c.Realtime.URL == "" {
		return fmt.Errorf("%w: realtime.url is required", ErrInvalidConfig)
	}
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port out of range", ErrInvalidConfig)
	}
	if c.Notifications.Capacity < 1 {
		return fmt.Errorf("%w: notifications.capacity must be positive", ErrInvalidConfig)
	}
	if c.Journal.Enabled && c.Database.DBName == "" {
		return fmt.Errorf("%w: database.dbname is required when journal is enabled", ErrInvalidConfig)
	}
	return nil
}
