package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		MorningCron   string `yaml:"morning_cron"`
		AfternoonCron string `yaml:"afternoon_cron"`
	} `yaml:"schedule"`
	Portfolio struct {
		MaxSlots     int     `yaml:"max_slots"`
		MinBuyScore  float64 `yaml:"min_buy_score"`
		TotalCapital float64 `yaml:"total_capital"`
	} `yaml:"portfolio"`
	Intake struct {
		CandidateDir string `yaml:"candidate_dir"`
		JudgmentDir  string `yaml:"judgment_dir"`
	} `yaml:"intake"`
	Feed struct {
		Source    string `yaml:"source"`     // "yahoo" or "fixed"
		KRXSuffix string `yaml:"krx_suffix"` // Yahoo suffix for bare KRX codes
	} `yaml:"feed"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("MAX_SLOTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Portfolio.MaxSlots = n
		}
	}
	if v := os.Getenv("TOTAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Portfolio.TotalCapital = f
		}
	}
	if v := os.Getenv("CRON_MORNING"); v != "" {
		cfg.Schedule.MorningCron = v
	}
	if v := os.Getenv("CRON_AFTERNOON"); v != "" {
		cfg.Schedule.AfternoonCron = v
	}
	if v := os.Getenv("CANDIDATE_DIR"); v != "" {
		cfg.Intake.CandidateDir = v
	}
	if v := os.Getenv("JUDGMENT_DIR"); v != "" {
		cfg.Intake.JudgmentDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Schedule.MorningCron == "" {
		cfg.Schedule.MorningCron = "0 30 8 * * 1-5"
	}
	if cfg.Schedule.AfternoonCron == "" {
		cfg.Schedule.AfternoonCron = "0 0 15 * * 1-5"
	}
	if cfg.Portfolio.MaxSlots == 0 {
		cfg.Portfolio.MaxSlots = 10
	}
	if cfg.Portfolio.MinBuyScore == 0 {
		cfg.Portfolio.MinBuyScore = 7.0
	}
	if cfg.Intake.CandidateDir == "" {
		cfg.Intake.CandidateDir = "data/candidates"
	}
	if cfg.Intake.JudgmentDir == "" {
		cfg.Intake.JudgmentDir = "data/judgments"
	}
	if cfg.Feed.Source == "" {
		cfg.Feed.Source = "yahoo"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/prism_tracker.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and sane. Telegram is
// optional; when the token is absent notifications fall back to the log.
func (c *Config) Validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when a bot token is set")
	}
	if c.Portfolio.MaxSlots <= 0 {
		return fmt.Errorf("portfolio.max_slots must be positive")
	}
	if c.Portfolio.MinBuyScore < 0 || c.Portfolio.MinBuyScore > 10 {
		return fmt.Errorf("portfolio.min_buy_score must be within 0~10")
	}
	return nil
}
