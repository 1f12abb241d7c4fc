package config

import (
	"errors"
	"time"
)

// Config represents the gateway service configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Admin       AdminConfig       `mapstructure:"admin"`
	Session     SessionConfig     `mapstructure:"session"`
	TenantStore TenantStoreConfig `mapstructure:"tenant_store"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// AdminConfig guards the key-management routes.
type AdminConfig struct {
	Key string `mapstructure:"key"`
}

// SessionConfig represents connection lifecycle configuration
type SessionConfig struct {
	ReconnectBaseDelay  time.Duration `mapstructure:"reconnect_base_delay"`
	ReconnectMaxDelay   time.Duration `mapstructure:"reconnect_max_delay"`
	ReconnectMaxRetries int           `mapstructure:"reconnect_max_retries"`
	InboxSize           int           `mapstructure:"inbox_size"`
}

// TenantStoreConfig represents API key persistence configuration.
// Backend is "file" or "postgres".
type TenantStoreConfig struct {
	Backend       string        `mapstructure:"backend"`
	FilePath      string        `mapstructure:"file_path"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// CredentialsConfig represents session credential persistence
// configuration. Backend is "file" or "redis".
type CredentialsConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

// DatabaseConfig represents the PostgreSQL tenant store configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig represents the Redis credential store configuration
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	MaxRetries   int    `mapstructure:"max_retries"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// RateLimiterConfig represents rate limiting configuration
type RateLimiterConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server.port must be between 1 and 65535")
	}
	if c.Admin.Key == "" {
		return errors.New("admin.key is required")
	}
	if c.Session.ReconnectBaseDelay <= 0 {
		return errors.New("session.reconnect_base_delay must be positive")
	}
	if c.Session.ReconnectMaxDelay < c.Session.ReconnectBaseDelay {
		return errors.New("session.reconnect_max_delay must be >= reconnect_base_delay")
	}
	if c.Session.ReconnectMaxRetries <= 0 {
		return errors.New("session.reconnect_max_retries must be positive")
	}
	if c.Session.InboxSize <= 0 {
		return errors.New("session.inbox_size must be positive")
	}
	if !isValidBackend(c.TenantStore.Backend, "file", "postgres") {
		return errors.New("tenant_store.backend must be one of: file, postgres")
	}
	if c.TenantStore.Backend == "file" && c.TenantStore.FilePath == "" {
		return errors.New("tenant_store.file_path is required for the file backend")
	}
	if c.TenantStore.Backend == "postgres" {
		if c.Database.Host == "" {
			return errors.New("database.host is required for the postgres backend")
		}
		if c.Database.Database == "" {
			return errors.New("database.database is required for the postgres backend")
		}
		if c.Database.User == "" {
			return errors.New("database.user is required for the postgres backend")
		}
	}
	if !isValidBackend(c.Credentials.Backend, "file", "redis") {
		return errors.New("credentials.backend must be one of: file, redis")
	}
	if c.Credentials.Backend == "file" && c.Credentials.Dir == "" {
		return errors.New("credentials.dir is required for the file backend")
	}
	if c.Credentials.Backend == "redis" && c.Redis.Host == "" {
		return errors.New("redis.host is required for the redis backend")
	}
	if c.TenantStore.FlushInterval <= 0 {
		return errors.New("tenant_store.flush_interval must be positive")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	return nil
}

func isValidBackend(backend string, valid ...string) bool {
	for _, v := range valid {
		if backend == v {
			return true
		}
	}
	return false
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Admin: AdminConfig{
			Key: "",
		},
		Session: SessionConfig{
			ReconnectBaseDelay:  2 * time.Second,
			ReconnectMaxDelay:   60 * time.Second,
			ReconnectMaxRetries: 10,
			InboxSize:           100,
		},
		TenantStore: TenantStoreConfig{
			Backend:       "file",
			FilePath:      "data/api-keys.json",
			FlushInterval: 5 * time.Second,
		},
		Credentials: CredentialsConfig{
			Backend: "file",
			Dir:     "data/sessions",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "gateway",
			User:            "gateway",
			Password:        "",
			MaxConnections:  20,
			MinConnections:  2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         6379,
			Password:     "",
			DB:           0,
			MaxRetries:   3,
			PoolSize:     50,
			MinIdleConns: 5,
		},
		RateLimiter: RateLimiterConfig{
			Enabled:           true,
			RequestsPerSecond: 100,
			BurstSize:         200,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
