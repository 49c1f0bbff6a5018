package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config 站点运行配置，全部来自环境变量（可由 .env 提供）
type Config struct {
	Port          string `env:"PORT,default=8080"`
	GinMode       string `env:"GIN_MODE,default=release"`
	DatabaseURL   string `env:"DATABASE_URL,default=host=localhost user=postgres password=postgres dbname=resepi port=5432 sslmode=disable TimeZone=Asia/Kuala_Lumpur"`
	SessionSecret string `env:"SESSION_SECRET,default=secret_key_change_me"`
	SiteURL       string `env:"SITE_URL,default=http://localhost:8080"`
	TemplatesDir  string `env:"TEMPLATES_DIR,default=./web/templates"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	SMTPFrom string `env:"SMTP_FROM"`

	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL,default=24h"`
	CounterTimeout       time.Duration `env:"COUNTER_TIMEOUT,default=3s"`
	CommentRatePerMinute int           `env:"COMMENT_RATE_PER_MINUTE,default=6"`
	TokenSweepSpec       string        `env:"TOKEN_SWEEP_SPEC,default=@hourly"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
}

// Load reads .env (if present) and decodes the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, reading env vars from system")
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CommentRatePerMinute <= 0 {
		return fmt.Errorf("COMMENT_RATE_PER_MINUTE must be positive, got %d", c.CommentRatePerMinute)
	}
	if c.VerificationTokenTTL <= 0 {
		return fmt.Errorf("VERIFICATION_TOKEN_TTL must be positive, got %s", c.VerificationTokenTTL)
	}
	if c.CounterTimeout <= 0 {
		return fmt.Errorf("COUNTER_TIMEOUT must be positive, got %s", c.CounterTimeout)
	}
	return nil
}

// MailEnabled 是否配置了完整的 SMTP 参数
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.SMTPFrom != ""
}
