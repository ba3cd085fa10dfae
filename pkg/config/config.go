// Package config loads server configuration from a YAML file with
// DIARIO_* environment overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"diario/pkg/logger"
)

// Duration wraps time.Duration so "5m" style values parse from YAML
type Duration time.Duration

// UnmarshalYAML parses Go duration strings
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to the standard library type
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Site      SiteConfig      `yaml:"site"`
	Logging   logger.Config   `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	User            string   `yaml:"user"`
	Password        string   `yaml:"password"`
	Database        string   `yaml:"database"`
	SSLMode         string   `yaml:"ssl_mode"`
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime Duration `yaml:"conn_max_idle_time"`
	Timeout         Duration `yaml:"timeout"`
}

// RedisConfig holds the token-store connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret     string   `yaml:"secret"`
	Issuer     string   `yaml:"issuer"`
	Expiration Duration `yaml:"expiration"`
}

// SMTPConfig holds outbound mail settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`      // e.g. "Diario de un Instante <no-reply@diario.example>"
	ForceTLS bool   `yaml:"force_tls"` // implicit TLS (port 465) instead of STARTTLS
	Enabled  bool   `yaml:"enabled"`
}

// AuthConfig holds registration policy
type AuthConfig struct {
	InviteRequired bool `yaml:"invite_required"`
}

// RateLimitConfig bounds comment creation per client IP
type RateLimitConfig struct {
	CommentsPerMinute int `yaml:"comments_per_minute"`
	Burst             int `yaml:"burst"`
}

// SiteConfig holds public-facing URLs used in emails
type SiteConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

// Load reads the YAML config at path and applies env overrides
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required (set DIARIO_JWT_SECRET)")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: Duration(5 * time.Minute),
			ConnMaxIdleTime: Duration(2 * time.Minute),
			Timeout:         Duration(5 * time.Second),
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		JWT: JWTConfig{
			Issuer:     "diario",
			Expiration: Duration(24 * time.Hour),
		},
		SMTP:      SMTPConfig{Port: 587},
		RateLimit: RateLimitConfig{CommentsPerMinute: 10, Burst: 5},
		Site:      SiteConfig{Name: "Diario de un Instante", BaseURL: "http://localhost:8080"},
		Logging:   logger.Config{Level: "info", Format: "text", Output: "stdout"},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DIARIO_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DIARIO_DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("DIARIO_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DIARIO_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DIARIO_DB_NAME"); v != "" {
		cfg.Database.Database = v
	}
	if v := os.Getenv("DIARIO_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("DIARIO_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("DIARIO_JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("DIARIO_SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("DIARIO_SMTP_USERNAME"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("DIARIO_SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("DIARIO_BASE_URL"); v != "" {
		cfg.Site.BaseURL = v
	}
}
