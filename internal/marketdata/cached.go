package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"stock-researcher/internal/cache"
	"stock-researcher/internal/logging"
	"stock-researcher/internal/models"
)

// CachedProvider fronts a Provider with a TTL cache. Errors are never
// cached, so a failed fetch is retried on the next call.
type CachedProvider struct {
	provider Provider
	cache    *cache.Cache
	logger   zerolog.Logger
}

// NewCachedProvider wraps provider with the given cache.
func NewCachedProvider(provider Provider, c *cache.Cache) *CachedProvider {
	return &CachedProvider{provider: provider, cache: c, logger: zerolog.Nop()}
}

// WithLogger sets the logger for fetch diagnostics.
func (p *CachedProvider) WithLogger(logger zerolog.Logger) *CachedProvider {
	p.logger = logger
	return p
}

// History fetches daily candles, serving repeats from the cache.
func (p *CachedProvider) History(ctx context.Context, symbol, period string) ([]models.Candle, error) {
	period = NormalizePeriod(period)
	key := fmt.Sprintf("history_%s_%s", NSESymbol(symbol), period)

	if v, ok := p.cache.Get(key); ok {
		logging.LogFetch(p.logger, "history", symbol, true, 0, nil)
		return v.([]models.Candle), nil
	}

	start := time.Now()
	candles, err := p.provider.History(ctx, symbol, period)
	logging.LogFetch(p.logger, "history", symbol, false, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, candles)
	return candles, nil
}

// Quote fetches the latest quote, serving repeats from the cache.
func (p *CachedProvider) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	key := fmt.Sprintf("quote_%s", NSESymbol(symbol))

	if v, ok := p.cache.Get(key); ok {
		logging.LogFetch(p.logger, "quote", symbol, true, 0, nil)
		return v.(*models.Quote), nil
	}

	start := time.Now()
	quote, err := p.provider.Quote(ctx, symbol)
	logging.LogFetch(p.logger, "quote", symbol, false, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, quote)
	return quote, nil
}

// CompanyInfo fetches the company profile, serving repeats from the cache.
func (p *CachedProvider) CompanyInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	key := fmt.Sprintf("info_%s", NSESymbol(symbol))

	if v, ok := p.cache.Get(key); ok {
		return v.(*models.CompanyInfo), nil
	}

	info, err := p.provider.CompanyInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, info)
	return info, nil
}

// Index fetches an index snapshot, serving repeats from the cache.
func (p *CachedProvider) Index(ctx context.Context, name string) (*models.IndexSnapshot, error) {
	key := fmt.Sprintf("index_%s", name)

	if v, ok := p.cache.Get(key); ok {
		return v.(*models.IndexSnapshot), nil
	}

	snapshot, err := p.provider.Index(ctx, name)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, snapshot)
	return snapshot, nil
}
