package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Market   MarketConfig   `yaml:"market"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
	// TrustedProxies may set X-Forwarded-For. Empty trusts none and the
	// peer address is the client IP.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Encoding   string `yaml:"encoding"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
	Issuer      string `yaml:"issuer"`
}

// TTL returns the token validity window
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpireHours) * time.Hour
}

type BootstrapAccount struct {
	ID       string `yaml:"id"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type AuthConfig struct {
	// BootstrapAdminEmail self-registers as admin. Empty disables the rule.
	BootstrapAdminEmail string             `yaml:"bootstrap_admin_email"`
	BcryptCost          int                `yaml:"bcrypt_cost"`
	LoginRatePerSecond  float64            `yaml:"login_rate_per_second"`
	LoginBurst          int                `yaml:"login_burst"`
	BootstrapAccounts   []BootstrapAccount `yaml:"bootstrap_accounts"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GeminiConfig struct {
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type ScoringConfig struct {
	Provider string        `yaml:"provider"`
	Timeout  time.Duration `yaml:"timeout"`
	Gemini   GeminiConfig  `yaml:"gemini"`
}

type MarketConfig struct {
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	StreamInterval time.Duration `yaml:"stream_interval"`
}

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	ScoringSimulated = "simulated"
	ScoringGemini    = "gemini"
)

// Default returns a configuration usable without any file
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 5000, Mode: "release"},
		Log:    LogConfig{Level: "info", Encoding: "json", MaxSizeMB: 10, MaxBackups: 30, MaxAgeDays: 30},
		JWT:    JWTConfig{ExpireHours: 7 * 24, Issuer: "finrl-desk"},
		Auth: AuthConfig{
			BootstrapAdminEmail: "admin@finrl.ai",
			BcryptCost:          10,
			LoginRatePerSecond:  5,
			LoginBurst:          10,
			BootstrapAccounts: []BootstrapAccount{
				{ID: "admin_demo", Email: "admin@finrl.ai", Password: "admin123", Role: "admin"},
				{ID: "analyst_1", Email: "analyst1@mgx.world", Password: "analyst123", Role: "user"},
				{ID: "analyst_2", Email: "analyst2@mgx.world", Password: "analyst123", Role: "user"},
			},
		},
		Store:    StoreConfig{Driver: StoreMemory},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, SSLMode: "disable"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Scoring: ScoringConfig{
			Provider: ScoringSimulated,
			Timeout:  10 * time.Second,
			Gemini:   GeminiConfig{Model: "gemini-2.5-flash", RequestsPerMinute: 15},
		},
		Market: MarketConfig{CacheTTL: 5 * time.Second, StreamInterval: 5 * time.Second},
	}
}

// Load loads configuration from file and environment variables.
// A .env file in the working directory is applied to the environment first.
// A missing config file is not an error; defaults and environment apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	// Override with environment variables if present
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that have no usable default
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (JWT_SECRET)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode %q (debug, release or test)", c.Server.Mode)
	}
	if c.JWT.ExpireHours <= 0 {
		return fmt.Errorf("invalid jwt expire_hours %d", c.JWT.ExpireHours)
	}
	switch c.Store.Driver {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Scoring.Provider {
	case ScoringSimulated:
	case ScoringGemini:
		if c.Scoring.Gemini.APIKey == "" {
			return errors.New("gemini scoring requires an api key (GEMINI_API_KEY)")
		}
	default:
		return fmt.Errorf("unknown scoring provider %q", c.Scoring.Provider)
	}
	if c.Scoring.Timeout <= 0 {
		return fmt.Errorf("invalid scoring timeout %s", c.Scoring.Timeout)
	}
	return nil
}

func (c *Config) loadFromEnv() {
	// Server
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SERVER_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		c.Server.TrustedProxies = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.Server.TrustedProxies = append(c.Server.TrustedProxies, p)
			}
		}
	}

	// Log
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}

	// JWT
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("JWT_EXPIRE_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			c.JWT.ExpireHours = hours
		}
	}

	// Auth
	if v, ok := os.LookupEnv("BOOTSTRAP_ADMIN_EMAIL"); ok {
		c.Auth.BootstrapAdminEmail = strings.TrimSpace(v)
	}

	// Store
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}

	// Database
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.DBName = v
	}

	// Redis
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Redis.Port = port
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	// Scoring
	if v := os.Getenv("SCORING_PROVIDER"); v != "" {
		c.Scoring.Provider = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Scoring.Gemini.APIKey = v
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr returns the Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
