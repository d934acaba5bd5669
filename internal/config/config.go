package config

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"MacroSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Sources struct {
		BLS struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"bls"`
		AlphaVantage struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"alphavantage"`
		Polygon struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"polygon"`
		Yahoo struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"yahoo"`
		// RatePerSecond and Burst apply per upstream host.
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
	} `yaml:"sources"`
	Allocation struct {
		MomentumWindow   int               `yaml:"momentum_window"`
		VolatilityWindow int               `yaml:"volatility_window"`
		Symbols          map[string]string `yaml:"symbols"` // sector name -> ETF override
	} `yaml:"allocation"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		MacroCron   string `yaml:"macro_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"BLS_API_KEY", &c.Sources.BLS.APIKey},
		{"ALPHAVANTAGE_API_KEY", &c.Sources.AlphaVantage.APIKey},
		{"POLYGON_API_KEY", &c.Sources.Polygon.APIKey},
		{"TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &c.Telegram.ChatID},
		{"SQLITE_PATH", &c.Database.SQLitePath},
		{"HTTP_ADDR", &c.HTTP.Addr},
		{"LOG_LEVEL", &c.Log.Level},
		{"CRON_REFRESH", &c.Schedule.RefreshCron},
		{"HTTPS_PROXY", &c.Proxy},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Sources.BLS.BaseURL == "" {
		c.Sources.BLS.BaseURL = "https://api.bls.gov"
	}
	if c.Sources.AlphaVantage.BaseURL == "" {
		c.Sources.AlphaVantage.BaseURL = "https://www.alphavantage.co"
	}
	if c.Sources.Polygon.BaseURL == "" {
		c.Sources.Polygon.BaseURL = "https://api.polygon.io"
	}
	if c.Sources.Yahoo.BaseURL == "" {
		c.Sources.Yahoo.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Sources.RatePerSecond == 0 {
		c.Sources.RatePerSecond = 5
	}
	if c.Sources.Burst == 0 {
		c.Sources.Burst = 1
	}
	if c.Allocation.MomentumWindow == 0 {
		c.Allocation.MomentumWindow = 63
	}
	if c.Allocation.VolatilityWindow == 0 {
		c.Allocation.VolatilityWindow = 63
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 30 17 * * 1-5"
	}
	if c.Schedule.MacroCron == "" {
		c.Schedule.MacroCron = "0 0 9 * * *"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/macro_sentinel.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// SymbolOverrides resolves the configured ETF overrides to sectors.
func (c *Config) SymbolOverrides() (map[model.Sector]string, error) {
	out := make(map[model.Sector]string, len(c.Allocation.Symbols))
	for name, sym := range c.Allocation.Symbols {
		s, err := model.ParseSector(name)
		if err != nil {
			return nil, fmt.Errorf("allocation.symbols: %w", err)
		}
		out[s] = sym
	}
	return out, nil
}

// Validate checks that all required fields are set and well formed.
func (c *Config) Validate() error {
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Sources.RatePerSecond < 0 {
		return fmt.Errorf("sources.rate_per_second must not be negative")
	}
	if c.Sources.Burst < 1 {
		return fmt.Errorf("sources.burst must be at least 1")
	}
	if c.Allocation.MomentumWindow < 1 || c.Allocation.VolatilityWindow < 2 {
		return fmt.Errorf("allocation windows too small: momentum %d, volatility %d",
			c.Allocation.MomentumWindow, c.Allocation.VolatilityWindow)
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.RefreshCron); err != nil {
		return fmt.Errorf("schedule.refresh_cron: %w", err)
	}
	if _, err := parser.Parse(c.Schedule.MacroCron); err != nil {
		return fmt.Errorf("schedule.macro_cron: %w", err)
	}
	if _, err := c.SymbolOverrides(); err != nil {
		return err
	}
	return nil
}
