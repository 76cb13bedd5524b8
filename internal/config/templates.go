package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Stock Researcher Configuration

[data]
# Default history period: 1mo, 3mo, 6mo, 1y, 2y, 5y
default_period = "1y"
# In-memory cache size (entries) and time-to-live
cache_capacity = 256
cache_ttl = "15m"
# Provider HTTP timeout and retry budget
request_timeout = "15s"
requests_per_min = 10
max_retries = 3
# Default exchange: NSE, BSE
default_exchange = "NSE"

[technical]
sma_short = 20
sma_medium = 50
sma_long = 200
rsi_period = 14
macd_fast = 12
macd_slow = 26
macd_signal = 9
bb_period = 20
bb_std_dev = 2.0
atr_period = 14
volume_period = 20
# Minimum trading days of history required for a full analysis
min_bars = 50

[fundamental]
pe_excellent = 15.0
pe_acceptable = 30.0
pb_excellent = 1.0
pb_acceptable = 5.0
roe_excellent = 15.0
roe_acceptable = 10.0
de_max = 1.5
growth_excellent = 10.0

[agents]
# OpenAI model for report generation
model = "gpt-4o-mini"
temperature = 0.3
max_tokens = 2000
# Disable to use the deterministic rule-based report instead
enabled = true

[bot]
enabled = false
# Per-user cooldown for full /analyze requests
cooldown_seconds = 30
# Daily market digest schedule (cron, IST): 08:30 on weekdays
digest_schedule = "0 30 8 * * 1-5"
digest_enabled = false
# Telegram user IDs allowed to manage the digest
admin_ids = []
poll_timeout = "60s"

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Time format
time_format = "15:04:05"
`

const credentialsTemplate = `# Stock Researcher Credentials
# Keep this file private (chmod 600).

[openai]
api_key = ""

[telegram]
bot_token = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	// Credentials are sensitive, restrict permissions
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return nil
}
