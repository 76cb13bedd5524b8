package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"

	apperrors "stock-researcher/internal/errors"
	"stock-researcher/internal/models"
)

// NewsProvider fetches recent headlines for a symbol.
type NewsProvider interface {
	News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error)
}

// searchParams are the search API query parameters.
type searchParams struct {
	Query      string `url:"q"`
	NewsCount  int    `url:"newsCount"`
	QuoteCount int    `url:"quotesCount"`
}

// yahooSearch is the search API response, news portion only.
type yahooSearch struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// News fetches recent headlines via the Yahoo search API.
func (p *YahooProvider) News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}

	params, err := query.Values(searchParams{
		Query:      p.ticker(symbol),
		NewsCount:  limit,
		QuoteCount: 0,
	})
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v1/finance/search?%s", p.baseURL, params.Encode())

	var search yahooSearch
	if err := p.fetchJSON(ctx, u, &search); err != nil {
		return nil, wrapUnavailable(symbol, "fetching news", err)
	}
	if len(search.News) == 0 {
		return nil, apperrors.NewDataUnavailableError(symbol, "no news returned", nil)
	}

	items := make([]models.NewsItem, 0, limit)
	for _, n := range search.News {
		if len(items) == limit {
			break
		}
		if _, err := url.Parse(n.Link); err != nil {
			continue
		}
		items = append(items, models.NewsItem{
			Title:       n.Title,
			Source:      n.Publisher,
			URL:         n.Link,
			PublishedAt: time.Unix(n.ProviderPublishTime, 0).UTC(),
		})
	}
	return items, nil
}
