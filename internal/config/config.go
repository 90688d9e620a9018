package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Redis     RedisConfig     `json:"redis"`
	Database  DatabaseConfig  `json:"database"`
	Mail      MailConfig      `json:"mail"`
}

type ServerConfig struct {
	Port           string   `json:"port"`
	Environment    string   `json:"environment"`
	MaxConnections int      `json:"max_connections"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type RateLimitConfig struct {
	Algorithm     string   `json:"algorithm"` // "sliding_log" "sliding_window" "fixed_window" "token_bucket"
	MaxRequests   int      `json:"max_requests"`
	Window        Duration `json:"window"`
	SweepInterval Duration `json:"sweep_interval"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type DatabaseConfig struct {
	DSN              string `json:"dsn"`
	RequestLogBuffer int    `json:"request_log_buffer"`
	RetentionDays    int    `json:"retention_days"` // 0 keeps request logs forever
}

type MailConfig struct {
	Provider     string     `json:"provider"` // "log" or "smtp"
	SMTP         SMTPConfig `json:"smtp"`
	ResendAPIKey string     `json:"resend_api_key"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// Duration reads JSON strings such as "1h" or "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	d.Duration = parsed
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != ""
}

func (r RedisConfig) GetRedisAddr() string {
	return r.Host + ":" + r.Port
}

func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.DSN) != ""
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
		},
		RateLimit: RateLimitConfig{
			Algorithm:     "sliding_log",
			MaxRequests:   5,
			Window:        Duration{time.Hour},
			SweepInterval: Duration{10 * time.Minute},
		},
		Redis: RedisConfig{
			Port: "6379",
		},
		Database: DatabaseConfig{
			RequestLogBuffer: 1000,
			RetentionDays:    30,
		},
		Mail: MailConfig{
			Provider: "log",
			SMTP: SMTPConfig{
				Port: 587,
			},
		},
	}
}

// Load builds the configuration from defaults, the optional JSON file at path
// and finally the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := json.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Environment = getEnv("ENVIRONMENT", c.Server.Environment)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	c.RateLimit.Algorithm = getEnv("RATE_LIMIT_ALGORITHM", c.RateLimit.Algorithm)

	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	c.Database.DSN = getEnv("DATABASE_URL", c.Database.DSN)

	c.Mail.Provider = getEnv("MAIL_PROVIDER", c.Mail.Provider)
	c.Mail.ResendAPIKey = getEnv("RESEND_API_KEY", c.Mail.ResendAPIKey)
	c.Mail.SMTP.Host = getEnv("SMTP_HOST", c.Mail.SMTP.Host)
	c.Mail.SMTP.Username = getEnv("SMTP_USERNAME", c.Mail.SMTP.Username)
	c.Mail.SMTP.Password = getEnv("SMTP_PASSWORD", c.Mail.SMTP.Password)
	c.Mail.SMTP.From = getEnv("SMTP_FROM", c.Mail.SMTP.From)
	c.Mail.SMTP.To = getEnv("CONTACT_TO", c.Mail.SMTP.To)

	var err error
	if c.Server.MaxConnections, err = getEnvInt("MAX_CONNECTIONS", c.Server.MaxConnections); err != nil {
		return err
	}
	if c.RateLimit.MaxRequests, err = getEnvInt("RATE_LIMIT_MAX_REQUESTS", c.RateLimit.MaxRequests); err != nil {
		return err
	}
	if c.RateLimit.Window.Duration, err = getEnvDuration("RATE_LIMIT_WINDOW", c.RateLimit.Window.Duration); err != nil {
		return err
	}
	if c.RateLimit.SweepInterval.Duration, err = getEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", c.RateLimit.SweepInterval.Duration); err != nil {
		return err
	}
	if c.Database.RetentionDays, err = getEnvInt("REQUEST_LOG_RETENTION_DAYS", c.Database.RetentionDays); err != nil {
		return err
	}
	if c.Redis.DB, err = getEnvInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.Mail.SMTP.Port, err = getEnvInt("SMTP_PORT", c.Mail.SMTP.Port); err != nil {
		return err
	}

	return nil
}

func (c *Config) Validate() error {
	if c.RateLimit.MaxRequests <= 0 {
		return errors.New("rate_limit.max_requests must be > 0")
	}
	if c.RateLimit.Window.Duration < time.Millisecond {
		return errors.New("rate_limit.window must be at least 1ms")
	}
	if c.RateLimit.SweepInterval.Duration < 0 {
		return errors.New("rate_limit.sweep_interval must be >= 0")
	}
	if c.Database.RetentionDays < 0 {
		return errors.New("database.retention_days must be >= 0")
	}
	if c.Server.MaxConnections < 0 {
		return errors.New("server.max_connections must be >= 0")
	}

	switch c.Mail.Provider {
	case "log":
	case "smtp":
		smtp := c.Mail.SMTP
		if smtp.Host == "" || smtp.From == "" || smtp.To == "" {
			return errors.New("mail.smtp host, from and to are required when mail.provider is smtp")
		}
	default:
		return fmt.Errorf("unknown mail provider: %s", c.Mail.Provider)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
