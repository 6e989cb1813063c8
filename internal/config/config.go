package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockVision/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider     string `yaml:"provider"` // yahoo, rest or static
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"data_source"`
	Forecast struct {
		Symbols []string `yaml:"symbols"`
		Days    int      `yaml:"days"`
		Model   string   `yaml:"model"`
		Trees   int      `yaml:"trees"`
		Seed    int64    `yaml:"seed"`
		Workers int      `yaml:"workers"`
	} `yaml:"forecast"`
	Schedule struct {
		ForecastCron string `yaml:"forecast_cron"`
	} `yaml:"schedule"`
	Session struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"session"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Cache struct {
		Backend       string        `yaml:"backend"` // memory, redis or none
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	API struct {
		Addr string `yaml:"addr"`
	} `yaml:"api"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads a .env file if present, then the YAML config, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("FORECAST_SYMBOLS"); v != "" {
		c.Forecast.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("FORECAST_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORECAST_DAYS: %w", err)
		}
		c.Forecast.Days = days
	}
	if v := os.Getenv("FORECAST_MODEL"); v != "" {
		c.Forecast.Model = v
	}
	if v := os.Getenv("CRON_FORECAST"); v != "" {
		c.Schedule.ForecastCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = ttl
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = "rest"
		}
	}
	if c.DataSource.LookbackDays == 0 {
		c.DataSource.LookbackDays = 730
	}
	for i, s := range c.Forecast.Symbols {
		c.Forecast.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if len(c.Forecast.Symbols) == 0 {
		c.Forecast.Symbols = []string{"AAPL"}
	}
	if c.Forecast.Days == 0 {
		c.Forecast.Days = 30
	}
	if c.Forecast.Model == "" {
		c.Forecast.Model = string(model.KindEnsemble)
	}
	if c.Forecast.Trees == 0 {
		c.Forecast.Trees = 100
	}
	if c.Forecast.Seed == 0 {
		c.Forecast.Seed = 42
	}
	if c.Schedule.ForecastCron == "" {
		c.Schedule.ForecastCron = "0 30 22 * * 1-5"
	}
	if c.Session.StateFile == "" {
		c.Session.StateFile = "data/session.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stockvision.db"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
		if c.Cache.RedisAddr != "" {
			c.Cache.Backend = "redis"
		}
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// ModelKind returns the configured default model.
func (c *Config) ModelKind() (model.ModelKind, error) {
	return model.ParseModelKind(c.Forecast.Model)
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "static":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.LookbackDays < 60 {
		return fmt.Errorf("data_source.lookback_days must be at least 60")
	}
	if c.Forecast.Days < 1 || c.Forecast.Days > 365 {
		return fmt.Errorf("forecast.days must be between 1 and 365")
	}
	if _, err := c.ModelKind(); err != nil {
		return fmt.Errorf("forecast.model: %w", err)
	}
	if c.Forecast.Trees < 1 {
		return fmt.Errorf("forecast.trees must be positive")
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	return nil
}
