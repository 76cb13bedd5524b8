// Package bot exposes the research engine over a Telegram bot.
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"stock-researcher/internal/agents"
	"stock-researcher/internal/analysis/fundamentals"
	"stock-researcher/internal/analysis/indicators"
	apperrors "stock-researcher/internal/errors"
	"stock-researcher/internal/marketdata"
	"stock-researcher/internal/universe"
)

// Options configures the bot.
type Options struct {
	Token          string
	Provider       marketdata.Provider
	NewsProvider   marketdata.NewsProvider
	Researcher     *agents.Researcher
	Universe       *universe.Universe
	Params         indicators.Params
	Thresholds     fundamentals.Thresholds
	DefaultPeriod  string
	Cooldown       time.Duration
	PollTimeout    time.Duration
	DigestSchedule string
	DigestEnabled  bool
	AdminIDs       []int64
	Logger         zerolog.Logger
}

// Bot routes Telegram commands to the research engine.
type Bot struct {
	api        *tgbotapi.BotAPI
	provider   marketdata.Provider
	news       marketdata.NewsProvider
	researcher *agents.Researcher
	universe   *universe.Universe
	params     indicators.Params
	thresholds fundamentals.Thresholds
	logger     zerolog.Logger

	defaultPeriod string
	pollTimeout   time.Duration

	cooldown    time.Duration
	mu          sync.Mutex
	lastAnalyze map[int64]time.Time
	now         func() time.Time

	adminIDs       map[int64]bool
	digestSchedule string
	digestEnabled  bool
	cron           *cron.Cron
}

// New creates the bot and authenticates against the Telegram API.
func New(opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	b := newBot(opts)
	b.api = api
	return b, nil
}

// newBot builds the bot without the API connection, for tests.
func newBot(opts Options) *Bot {
	admins := make(map[int64]bool, len(opts.AdminIDs))
	for _, id := range opts.AdminIDs {
		admins[id] = true
	}
	cooldown := opts.Cooldown
	if cooldown == 0 {
		cooldown = 30 * time.Second
	}
	pollTimeout := opts.PollTimeout
	if pollTimeout == 0 {
		pollTimeout = 60 * time.Second
	}
	defaultPeriod := opts.DefaultPeriod
	if defaultPeriod == "" {
		defaultPeriod = "1y"
	}

	return &Bot{
		provider:       opts.Provider,
		news:           opts.NewsProvider,
		researcher:     opts.Researcher,
		universe:       opts.Universe,
		params:         opts.Params,
		thresholds:     opts.Thresholds,
		logger:         opts.Logger,
		defaultPeriod:  defaultPeriod,
		pollTimeout:    pollTimeout,
		cooldown:       cooldown,
		lastAnalyze:    make(map[int64]time.Time),
		now:            time.Now,
		adminIDs:       admins,
		digestSchedule: opts.DigestSchedule,
		digestEnabled:  opts.DigestEnabled,
	}
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info().Str("bot", b.api.Self.UserName).Msg("Bot started")

	if b.digestEnabled {
		if err := b.startDigest(ctx); err != nil {
			return err
		}
		defer b.cron.Stop()
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = int(b.pollTimeout.Seconds())
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	var text string
	if msg.IsCommand() {
		text = b.dispatch(ctx, msg.Command(), msg.CommandArguments(), msg.From.ID)
	} else {
		// Bare text is treated as a symbol for a quick quote
		text = b.handleQuick(ctx, strings.TrimSpace(msg.Text))
	}
	if text == "" {
		return
	}
	b.send(msg.Chat.ID, text)
}

func (b *Bot) send(chatID int64, text string) {
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Send failed")
	}
}

// dispatch routes one command to its handler and returns the reply text.
func (b *Bot) dispatch(ctx context.Context, command, args string, userID int64) string {
	symbol := strings.ToUpper(strings.TrimSpace(args))

	switch command {
	case "start", "help":
		return helpText
	case "analyze":
		if symbol == "" {
			return "Usage: /analyze SYMBOL (e.g. /analyze RELIANCE)"
		}
		if err := b.checkCooldown(userID); err != nil {
			return fmt.Sprintf("⏳ %v", err)
		}
		return b.handleAnalyze(ctx, symbol)
	case "quick":
		if symbol == "" {
			return "Usage: /quick SYMBOL (e.g. /quick TCS)"
		}
		return b.handleQuick(ctx, symbol)
	case "technical":
		if symbol == "" {
			return "Usage: /technical SYMBOL"
		}
		return b.handleTechnical(ctx, symbol)
	case "fundamental":
		if symbol == "" {
			return "Usage: /fundamental SYMBOL"
		}
		return b.handleFundamental(ctx, symbol)
	case "news":
		if symbol == "" {
			return "Usage: /news SYMBOL"
		}
		return b.handleNews(ctx, symbol)
	case "market":
		return b.handleMarket(ctx)
	case "digest":
		if !b.adminIDs[userID] {
			return fmt.Sprintf("❌ %v", apperrors.ErrNotAuthorized)
		}
		return "*Daily Digest*\n\n" + b.handleMarket(ctx)
	case "nifty50":
		return b.handleNifty50()
	case "sectors":
		return b.handleSectors(symbol)
	default:
		return "Unknown command. Try /help"
	}
}

// checkCooldown enforces the per-user gap between full analyses.
func (b *Bot) checkCooldown(userID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if last, ok := b.lastAnalyze[userID]; ok {
		remaining := b.cooldown - now.Sub(last)
		if remaining > 0 {
			return fmt.Errorf("%w: wait %ds before the next analysis",
				apperrors.ErrCooldownActive, int(remaining.Seconds()+0.5))
		}
	}
	b.lastAnalyze[userID] = now
	return nil
}

func (b *Bot) handleAnalyze(ctx context.Context, symbol string) string {
	state, err := b.researcher.Research(ctx, symbol, b.defaultPeriod)
	if err != nil {
		return errorText(symbol, err)
	}
	return state.Report
}

func (b *Bot) handleQuick(ctx context.Context, symbol string) string {
	if symbol == "" {
		return ""
	}
	quote, err := b.provider.Quote(ctx, symbol)
	if err != nil {
		return errorText(symbol, err)
	}
	return formatQuote(symbol, quote)
}

func (b *Bot) handleTechnical(ctx context.Context, symbol string) string {
	candles, err := b.provider.History(ctx, symbol, b.defaultPeriod)
	if err != nil {
		return errorText(symbol, err)
	}
	report, err := indicators.Compute(symbol, candles, b.params)
	if err != nil {
		return errorText(symbol, err)
	}
	return formatTechnical(report)
}

func (b *Bot) handleFundamental(ctx context.Context, symbol string) string {
	info, err := b.provider.CompanyInfo(ctx, symbol)
	if err != nil {
		return errorText(symbol, err)
	}
	return formatFundamental(fundamentals.Analyze(*info, b.thresholds))
}

func (b *Bot) handleNews(ctx context.Context, symbol string) string {
	items, err := b.news.News(ctx, symbol, 5)
	if err != nil {
		return errorText(symbol, err)
	}
	return formatNews(symbol, items)
}

func (b *Bot) handleMarket(ctx context.Context) string {
	var lines []string
	for _, name := range []string{"NIFTY50", "BANKNIFTY", "NIFTYIT", "SENSEX"} {
		snapshot, err := b.provider.Index(ctx, name)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s: unavailable", name))
			continue
		}
		lines = append(lines, formatIndex(snapshot))
	}
	return "*Market Overview*\n\n" + strings.Join(lines, "\n")
}

func (b *Bot) handleNifty50() string {
	stocks := b.universe.Nifty50()
	var lines []string
	for _, s := range stocks {
		lines = append(lines, fmt.Sprintf("`%s` %s", s.Symbol, s.Name))
	}
	return "*NIFTY50 Constituents*\n\n" + strings.Join(lines, "\n")
}

func (b *Bot) handleSectors(sector string) string {
	if sector != "" {
		stocks := b.universe.SectorStocks(sector)
		if len(stocks) == 0 {
			return fmt.Sprintf("Unknown sector %q. Try /sectors for the list.", sector)
		}
		var lines []string
		for _, s := range stocks {
			lines = append(lines, fmt.Sprintf("`%s` %s", s.Symbol, s.Name))
		}
		return fmt.Sprintf("*%s stocks*\n\n%s", sector, strings.Join(lines, "\n"))
	}

	return "*Sectors*\n\n" + strings.Join(b.universe.Sectors(), "\n") +
		"\n\nUse /sectors NAME to list a sector's stocks."
}

// startDigest schedules the daily market digest for admin users.
func (b *Bot) startDigest(ctx context.Context) error {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return fmt.Errorf("loading IST: %w", err)
	}

	b.cron = cron.New(cron.WithSeconds(), cron.WithLocation(ist))
	_, err = b.cron.AddFunc(b.digestSchedule, func() {
		digest := b.handleMarket(ctx)
		for id := range b.adminIDs {
			b.send(id, "*Daily Digest*\n\n"+digest)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling digest: %w", err)
	}

	b.cron.Start()
	b.logger.Info().Str("schedule", b.digestSchedule).Msg("Daily digest scheduled")
	return nil
}

const helpText = `*Stock Researcher Bot*

/analyze SYMBOL - Full research report (technical + fundamental + news)
/quick SYMBOL - Latest price and change
/technical SYMBOL - Technical indicators and signals
/fundamental SYMBOL - Fundamental metrics and rating
/news SYMBOL - Recent headlines
/market - Major index overview
/nifty50 - NIFTY50 constituents
/sectors [NAME] - Sector classification
/help - This message

You can also just send a symbol (e.g. RELIANCE) for a quick quote.

_Research only. Not investment advice._`
