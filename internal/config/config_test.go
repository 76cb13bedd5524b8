package config

import (
	"errors"
	"testing"
	"time"

	apperrors "stock-researcher/internal/errors"
)

func validConfig() *Config {
	return &Config{
		Data: DataConfig{
			DefaultPeriod:   "1y",
			CacheCapacity:   256,
			CacheTTL:        15 * time.Minute,
			RequestTimeout:  15 * time.Second,
			RequestsPerMin:  10,
			MaxRetries:      3,
			DefaultExchange: "NSE",
		},
		Technical: TechnicalConfig{
			SMAShort: 20, SMAMedium: 50, SMALong: 200,
			RSIPeriod: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
			BBPeriod: 20, BBStdDev: 2.0, ATRPeriod: 14, VolumePeriod: 20,
			MinBars: 50,
		},
		Bot: BotConfig{CooldownSeconds: 30},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cache capacity", func(c *Config) { c.Data.CacheCapacity = 0 }},
		{"zero cache ttl", func(c *Config) { c.Data.CacheTTL = 0 }},
		{"zero rate limit", func(c *Config) { c.Data.RequestsPerMin = 0 }},
		{"unknown exchange", func(c *Config) { c.Data.DefaultExchange = "NYSE" }},
		{"sma not increasing", func(c *Config) { c.Technical.SMAShort = 50 }},
		{"macd fast >= slow", func(c *Config) { c.Technical.MACDFast = 26 }},
		{"zero rsi period", func(c *Config) { c.Technical.RSIPeriod = 0 }},
		{"zero bb std dev", func(c *Config) { c.Technical.BBStdDev = 0 }},
		{"min bars below sma medium", func(c *Config) { c.Technical.MinBars = 40 }},
		{"negative cooldown", func(c *Config) { c.Bot.CooldownSeconds = -1 }},
		{"negative poll timeout", func(c *Config) { c.Bot.PollTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, apperrors.ErrConfigInvalid) {
				t.Errorf("got %v, want ErrConfigInvalid", err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg := validConfig()
	applyEnvOverrides(cfg)

	if cfg.Credentials.OpenAI.APIKey != "sk-test" {
		t.Errorf("openai key = %q", cfg.Credentials.OpenAI.APIKey)
	}
	if cfg.Credentials.Telegram.BotToken != "tg-test" {
		t.Errorf("telegram token = %q", cfg.Credentials.Telegram.BotToken)
	}
	if cfg.Agents.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.Agents.Model)
	}
}

func TestHasLLM(t *testing.T) {
	cfg := validConfig()
	if cfg.HasLLM() {
		t.Error("no key and agents disabled should report no LLM")
	}

	cfg.Agents.Enabled = true
	if cfg.HasLLM() {
		t.Error("agents enabled without a key should report no LLM")
	}

	cfg.Credentials.OpenAI.APIKey = "sk-test"
	if !cfg.HasLLM() {
		t.Error("agents enabled with a key should report LLM available")
	}
}

func TestLoadCreatesTemplates(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("first load should create templates and use defaults: %v", err)
	}
	if cfg.Data.DefaultPeriod != "1y" {
		t.Errorf("default period = %q, want 1y", cfg.Data.DefaultPeriod)
	}
	if cfg.Technical.MinBars != 50 {
		t.Errorf("min bars = %d, want 50", cfg.Technical.MinBars)
	}

	// Second load reads the generated files
	if _, err := Load(dir); err != nil {
		t.Fatalf("second load should read the templates: %v", err)
	}
}
