// Package config provides configuration management for the research application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	apperrors "stock-researcher/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Data        DataConfig        `mapstructure:"data"`
	Technical   TechnicalConfig   `mapstructure:"technical"`
	Fundamental FundamentalConfig `mapstructure:"fundamental"`
	Agents      AgentConfig       `mapstructure:"agents"`
	Bot         BotConfig         `mapstructure:"bot"`
	UI          UIConfig          `mapstructure:"ui"`
	Credentials Credentials       `mapstructure:"-"` // Loaded separately
}

// DataConfig holds market data provider configuration.
type DataConfig struct {
	DefaultPeriod   string        `mapstructure:"default_period"` // "1mo", "3mo", "6mo", "1y", "2y", "5y"
	CacheCapacity   int           `mapstructure:"cache_capacity"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RequestsPerMin  int           `mapstructure:"requests_per_min"`
	MaxRetries      int           `mapstructure:"max_retries"`
	DefaultExchange string        `mapstructure:"default_exchange"` // NSE, BSE
}

// TechnicalConfig holds indicator engine parameters.
type TechnicalConfig struct {
	SMAShort     int     `mapstructure:"sma_short"`
	SMAMedium    int     `mapstructure:"sma_medium"`
	SMALong      int     `mapstructure:"sma_long"`
	RSIPeriod    int     `mapstructure:"rsi_period"`
	MACDFast     int     `mapstructure:"macd_fast"`
	MACDSlow     int     `mapstructure:"macd_slow"`
	MACDSignal   int     `mapstructure:"macd_signal"`
	BBPeriod     int     `mapstructure:"bb_period"`
	BBStdDev     float64 `mapstructure:"bb_std_dev"`
	ATRPeriod    int     `mapstructure:"atr_period"`
	VolumePeriod int     `mapstructure:"volume_period"`
	MinBars      int     `mapstructure:"min_bars"`
}

// FundamentalConfig holds fundamental scoring thresholds.
type FundamentalConfig struct {
	PEExcellent     float64 `mapstructure:"pe_excellent"`
	PEAcceptable    float64 `mapstructure:"pe_acceptable"`
	PBExcellent     float64 `mapstructure:"pb_excellent"`
	PBAcceptable    float64 `mapstructure:"pb_acceptable"`
	ROEExcellent    float64 `mapstructure:"roe_excellent"`
	ROEAcceptable   float64 `mapstructure:"roe_acceptable"`
	DEMax           float64 `mapstructure:"de_max"`
	GrowthExcellent float64 `mapstructure:"growth_excellent"`
}

// AgentConfig holds LLM pipeline configuration.
type AgentConfig struct {
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Enabled     bool    `mapstructure:"enabled"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	CooldownSeconds int           `mapstructure:"cooldown_seconds"`
	DigestSchedule  string        `mapstructure:"digest_schedule"` // cron expression
	DigestEnabled   bool          `mapstructure:"digest_enabled"`
	AdminIDs        []int64       `mapstructure:"admin_ids"`
	PollTimeout     time.Duration `mapstructure:"poll_timeout"`
}

// UIConfig holds terminal UI configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI   OpenAICredentials   `mapstructure:"openai"`
	Telegram TelegramCredentials `mapstructure:"telegram"`
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// TelegramCredentials holds Telegram bot credentials.
type TelegramCredentials struct {
	BotToken string `mapstructure:"bot_token"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stock-researcher"
	}
	return filepath.Join(home, ".config", "stock-researcher")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	// Load main config
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	// Load credentials
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Config file not found, create template and continue with defaults
		if err := createTemplateConfig(configDir); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.default_period", "1y")
	v.SetDefault("data.cache_capacity", 256)
	v.SetDefault("data.cache_ttl", "15m")
	v.SetDefault("data.request_timeout", "15s")
	v.SetDefault("data.requests_per_min", 10)
	v.SetDefault("data.max_retries", 3)
	v.SetDefault("data.default_exchange", "NSE")

	v.SetDefault("technical.sma_short", 20)
	v.SetDefault("technical.sma_medium", 50)
	v.SetDefault("technical.sma_long", 200)
	v.SetDefault("technical.rsi_period", 14)
	v.SetDefault("technical.macd_fast", 12)
	v.SetDefault("technical.macd_slow", 26)
	v.SetDefault("technical.macd_signal", 9)
	v.SetDefault("technical.bb_period", 20)
	v.SetDefault("technical.bb_std_dev", 2.0)
	v.SetDefault("technical.atr_period", 14)
	v.SetDefault("technical.volume_period", 20)
	v.SetDefault("technical.min_bars", 50)

	v.SetDefault("fundamental.pe_excellent", 15.0)
	v.SetDefault("fundamental.pe_acceptable", 30.0)
	v.SetDefault("fundamental.pb_excellent", 1.0)
	v.SetDefault("fundamental.pb_acceptable", 5.0)
	v.SetDefault("fundamental.roe_excellent", 15.0)
	v.SetDefault("fundamental.roe_acceptable", 10.0)
	v.SetDefault("fundamental.de_max", 1.5)
	v.SetDefault("fundamental.growth_excellent", 10.0)

	v.SetDefault("agents.model", "gpt-4o-mini")
	v.SetDefault("agents.temperature", 0.3)
	v.SetDefault("agents.max_tokens", 2000)
	v.SetDefault("agents.enabled", true)

	v.SetDefault("bot.enabled", false)
	v.SetDefault("bot.cooldown_seconds", 30)
	v.SetDefault("bot.digest_schedule", "0 30 8 * * 1-5")
	v.SetDefault("bot.digest_enabled", false)
	v.SetDefault("bot.poll_timeout", "60s")

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("ui.time_format", "15:04:05")
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	// OpenAI credentials
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}

	// Telegram credentials
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Credentials.Telegram.BotToken = v
	}

	// Model override
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Agents.Model = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Data.CacheCapacity <= 0 {
		return fmt.Errorf("%w: cache_capacity must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Data.CacheTTL <= 0 {
		return fmt.Errorf("%w: cache_ttl must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Data.RequestsPerMin <= 0 {
		return fmt.Errorf("%w: requests_per_min must be positive", apperrors.ErrConfigInvalid)
	}
	if e := c.Data.DefaultExchange; e != "NSE" && e != "BSE" {
		return fmt.Errorf("%w: default_exchange must be NSE or BSE", apperrors.ErrConfigInvalid)
	}

	t := c.Technical
	if t.SMAShort <= 0 || t.SMAMedium <= 0 || t.SMALong <= 0 {
		return fmt.Errorf("%w: sma periods must be positive", apperrors.ErrConfigInvalid)
	}
	if t.SMAShort >= t.SMAMedium || t.SMAMedium >= t.SMALong {
		return fmt.Errorf("%w: sma periods must be strictly increasing (short < medium < long)", apperrors.ErrConfigInvalid)
	}
	if t.MACDFast >= t.MACDSlow {
		return fmt.Errorf("%w: macd_fast must be less than macd_slow", apperrors.ErrConfigInvalid)
	}
	if t.RSIPeriod <= 0 || t.BBPeriod <= 0 || t.ATRPeriod <= 0 || t.VolumePeriod <= 0 {
		return fmt.Errorf("%w: indicator periods must be positive", apperrors.ErrConfigInvalid)
	}
	if t.BBStdDev <= 0 {
		return fmt.Errorf("%w: bb_std_dev must be positive", apperrors.ErrConfigInvalid)
	}
	if t.MinBars < t.SMAMedium {
		return fmt.Errorf("%w: min_bars must be at least sma_medium (%d)", apperrors.ErrConfigInvalid, t.SMAMedium)
	}

	if c.Bot.CooldownSeconds < 0 {
		return fmt.Errorf("%w: cooldown_seconds must be non-negative", apperrors.ErrConfigInvalid)
	}
	if c.Bot.PollTimeout < 0 {
		return fmt.Errorf("%w: poll_timeout must be non-negative", apperrors.ErrConfigInvalid)
	}

	return nil
}

// HasLLM returns true if an OpenAI key is configured and agents are enabled.
func (c *Config) HasLLM() bool {
	return c.Agents.Enabled && c.Credentials.OpenAI.APIKey != ""
}
