package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroSentinel/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTP_ADDR", "LOG_LEVEL", "CRON_REFRESH", "POLYGON_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0 30 17 * * 1-5", cfg.Schedule.RefreshCron)
	assert.Equal(t, "0 0 9 * * *", cfg.Schedule.MacroCron)
	assert.Equal(t, "https://api.bls.gov", cfg.Sources.BLS.BaseURL)
	assert.Equal(t, "https://www.alphavantage.co", cfg.Sources.AlphaVantage.BaseURL)
	assert.Equal(t, 63, cfg.Allocation.MomentumWindow)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLValues(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
sources:
  polygon:
    api_key: from-file
  rate_per_second: 2
  burst: 3
allocation:
  momentum_window: 21
  symbols:
    Technology: VGT
http:
  addr: ":9090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Sources.Polygon.APIKey)
	assert.Equal(t, 2.0, cfg.Sources.RatePerSecond)
	assert.Equal(t, 3, cfg.Sources.Burst)
	assert.Equal(t, 21, cfg.Allocation.MomentumWindow)
	assert.Equal(t, 63, cfg.Allocation.VolatilityWindow)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)

	overrides, err := cfg.SymbolOverrides()
	require.NoError(t, err)
	assert.Equal(t, map[model.Sector]string{model.Technology: "VGT"}, overrides)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "sources:\n  polygon:\n    api_key: from-file\n")
	t.Setenv("POLYGON_API_KEY", "from-env")
	t.Setenv("BLS_API_KEY", "bls")
	t.Setenv("ALPHAVANTAGE_API_KEY", "av")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CRON_REFRESH", "0 0 18 * * 1-5")
	t.Setenv("HTTPS_PROXY", "http://proxy:3128")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Sources.Polygon.APIKey)
	assert.Equal(t, "bls", cfg.Sources.BLS.APIKey)
	assert.Equal(t, "av", cfg.Sources.AlphaVantage.APIKey)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, "/tmp/x.db", cfg.Database.SQLitePath)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "0 0 18 * * 1-5", cfg.Schedule.RefreshCron)
	assert.Equal(t, "http://proxy:3128", cfg.Proxy)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "sources: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"telegram half configured", func(c *Config) { c.Telegram.BotToken = "tok" }, "set together"},
		{"bad refresh cron", func(c *Config) { c.Schedule.RefreshCron = "every day" }, "refresh_cron"},
		{"bad macro cron", func(c *Config) { c.Schedule.MacroCron = "* *" }, "macro_cron"},
		{"negative rate", func(c *Config) { c.Sources.RatePerSecond = -1 }, "rate_per_second"},
		{"volatility window", func(c *Config) { c.Allocation.VolatilityWindow = 1 }, "windows too small"},
		{"unknown sector override", func(c *Config) {
			c.Allocation.Symbols = map[string]string{"Crypto": "BTC"}
		}, "allocation.symbols"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
