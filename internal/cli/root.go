// Package cli provides the command-line interface for the research application.
package cli

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stock-researcher/internal/agents"
	"stock-researcher/internal/analysis/fundamentals"
	"stock-researcher/internal/analysis/indicators"
	"stock-researcher/internal/cache"
	"stock-researcher/internal/config"
	"stock-researcher/internal/logging"
	"stock-researcher/internal/marketdata"
	"stock-researcher/internal/universe"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-29"
)

// ConfigDir resolves the configuration directory from the raw arguments.
// Configuration must be loaded before cobra parses flags, so the --config
// flag is scanned here; STOCK_RESEARCHER_CONFIG is the fallback and an
// empty result means the default directory.
func ConfigDir(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return os.Getenv("STOCK_RESEARCHER_CONFIG")
}

// App holds the application dependencies.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Provider   marketdata.Provider
	News       marketdata.NewsProvider
	Universe   *universe.Universe
	Researcher *agents.Researcher
	LLM        agents.LLMClient
}

// Params maps the technical config onto engine parameters.
func (a *App) Params() indicators.Params {
	t := a.Config.Technical
	return indicators.Params{
		SMAShort:     t.SMAShort,
		SMAMedium:    t.SMAMedium,
		SMALong:      t.SMALong,
		RSIPeriod:    t.RSIPeriod,
		MACDFast:     t.MACDFast,
		MACDSlow:     t.MACDSlow,
		MACDSignal:   t.MACDSignal,
		BBPeriod:     t.BBPeriod,
		BBStdDev:     t.BBStdDev,
		ATRPeriod:    t.ATRPeriod,
		VolumePeriod: t.VolumePeriod,
		MinBars:      t.MinBars,
	}
}

// Period returns the configured default period when the flag was not set.
func (a *App) Period(flag string) string {
	if flag != "" {
		return flag
	}
	return a.Config.Data.DefaultPeriod
}

// Thresholds maps the fundamental config onto scoring cutoffs.
func (a *App) Thresholds() fundamentals.Thresholds {
	f := a.Config.Fundamental
	return fundamentals.Thresholds{
		PELow:             f.PEExcellent,
		PEHigh:            f.PEAcceptable,
		PBLow:             f.PBExcellent,
		PBHigh:            f.PBAcceptable,
		ROEMin:            f.ROEExcellent,
		ROEAcceptable:     f.ROEAcceptable,
		DebtEquityMax:     f.DEMax,
		EarningsGrowthMin: f.GrowthExcellent,
	}
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	applyUISettings(cfg.UI)

	yahoo := marketdata.NewYahooProvider(marketdata.YahooOptions{
		Exchange:       cfg.Data.DefaultExchange,
		Timeout:        cfg.Data.RequestTimeout,
		RequestsPerMin: cfg.Data.RequestsPerMin,
		MaxRetries:     cfg.Data.MaxRetries,
		Logger:         logger,
	})
	app.Provider = marketdata.NewCachedProvider(yahoo, cache.New(cfg.Data.CacheCapacity, cfg.Data.CacheTTL)).
		WithLogger(logger)
	app.News = yahoo

	stocks, err := universe.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load stock universe, symbol lookups unavailable")
	} else {
		app.Universe = stocks
	}

	if cfg.HasLLM() {
		app.LLM = agents.NewOpenAIClient(agents.OpenAIOptions{
			APIKey:      cfg.Credentials.OpenAI.APIKey,
			Model:       cfg.Agents.Model,
			Temperature: cfg.Agents.Temperature,
			MaxTokens:   cfg.Agents.MaxTokens,
		})
		logger.Debug().Str("model", cfg.Agents.Model).Msg("OpenAI LLM client initialized")
	}

	researcher, err := agents.NewResearcher(agents.ResearcherOptions{
		Provider:     app.Provider,
		NewsProvider: app.News,
		LLM:          app.LLM,
		Params:       app.Params(),
		Thresholds:   app.Thresholds(),
		Logger:       logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build research pipeline")
	} else {
		app.Researcher = researcher
	}

	rootCmd := &cobra.Command{
		Use:   "researcher",
		Short: "Stock Researcher - AI-assisted equity research CLI",
		Long: `Stock Researcher is an equity research assistant for the Indian stock market.

It fetches NSE/BSE market data, computes technical indicators, scores
fundamentals, and runs a multi-stage research pipeline with optional
AI synthesis.

Use 'researcher help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/stock-researcher)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addAnalysisCommands(rootCmd, app)
	addMarketCommands(rootCmd, app)
	addUniverseCommands(rootCmd, app)
	addBotCommands(rootCmd, app)

	return rootCmd
}

func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Stock Researcher v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Data Configuration")
	output.Printf("  Default Period:  %s\n", cfg.Data.DefaultPeriod)
	output.Printf("  Cache:           %d entries, %s TTL\n", cfg.Data.CacheCapacity, cfg.Data.CacheTTL)
	output.Printf("  Rate Limit:      %d req/min, %d retries\n", cfg.Data.RequestsPerMin, cfg.Data.MaxRetries)
	output.Printf("  Exchange:        %s\n", cfg.Data.DefaultExchange)
	output.Println()

	output.Bold("Technical Configuration")
	output.Printf("  SMA Periods:     %d / %d / %d\n", cfg.Technical.SMAShort, cfg.Technical.SMAMedium, cfg.Technical.SMALong)
	output.Printf("  RSI Period:      %d\n", cfg.Technical.RSIPeriod)
	output.Printf("  MACD:            %d / %d / %d\n", cfg.Technical.MACDFast, cfg.Technical.MACDSlow, cfg.Technical.MACDSignal)
	output.Printf("  Min Bars:        %d\n", cfg.Technical.MinBars)
	output.Println()

	output.Bold("Agent Configuration")
	output.Printf("  Enabled:         %v\n", cfg.Agents.Enabled)
	output.Printf("  Model:           %s\n", cfg.Agents.Model)
	output.Printf("  Temperature:     %.1f\n", cfg.Agents.Temperature)
	output.Println()

	output.Bold("Bot Configuration")
	output.Printf("  Enabled:         %v\n", cfg.Bot.Enabled)
	output.Printf("  Cooldown:        %ds\n", cfg.Bot.CooldownSeconds)
	output.Printf("  Poll Timeout:    %s\n", cfg.Bot.PollTimeout)
	output.Printf("  Digest:          %v (%s)\n", cfg.Bot.DigestEnabled, cfg.Bot.DigestSchedule)
}
