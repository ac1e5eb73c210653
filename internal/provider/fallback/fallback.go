// Package fallback drives an ordered provider chain for one logical
// operation: try each provider in fixed priority order, log and skip
// failures, and fall through to the static demo terminal when every live
// provider fails. Chains implement the same interfaces as the providers
// they wrap, so callers cannot tell a chain from a single source.
//
// Provider order is static. There is no circuit breaker and no backoff;
// every call restarts the chain from the head.
package fallback

import (
	"context"
	"fmt"
	"log"
	"strings"

	"marketdash/internal/domain"
)

// link is one attempt in a chain.
type link[T any] struct {
	name string
	fn   func(ctx context.Context) (T, error)
}

// run walks the links in order and returns the first success. When the
// list is exhausted it returns the terminal's result, which by contract
// cannot fail. An empty chain with no terminal is the only error case.
func run[T any](ctx context.Context, op string, links []link[T], terminal func(context.Context) (T, error)) (T, error) {
	for _, l := range links {
		v, err := l.fn(ctx)
		if err == nil {
			return v, nil
		}
		log.Printf("fallback: %s via %s failed: %v", op, l.name, err)
	}
	if terminal != nil {
		return terminal(ctx)
	}
	var zero T
	return zero, fmt.Errorf("%s: no providers configured", op)
}

func chainName(names []string) string {
	return "chain(" + strings.Join(names, ",") + ")"
}

// NewsChain is the ordered news fallback.
type NewsChain struct {
	providers []domain.NewsProvider
	terminal  domain.NewsProvider
}

// NewNews builds a news chain. terminal is the demo provider and must not
// fail; it may be nil in tests that assert exhaustion behavior.
func NewNews(terminal domain.NewsProvider, providers ...domain.NewsProvider) *NewsChain {
	return &NewsChain{providers: providers, terminal: terminal}
}

func (c *NewsChain) Name() string {
	names := make([]string, 0, len(c.providers)+1)
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	if c.terminal != nil {
		names = append(names, c.terminal.Name())
	}
	return chainName(names)
}

func (c *NewsChain) FetchNews(ctx context.Context, category string, page, pageSize int) (*domain.NewsPage, error) {
	links := make([]link[*domain.NewsPage], 0, len(c.providers))
	for _, p := range c.providers {
		p := p
		links = append(links, link[*domain.NewsPage]{name: p.Name(), fn: func(ctx context.Context) (*domain.NewsPage, error) {
			return p.FetchNews(ctx, category, page, pageSize)
		}})
	}
	var terminal func(context.Context) (*domain.NewsPage, error)
	if c.terminal != nil {
		terminal = func(ctx context.Context) (*domain.NewsPage, error) {
			return c.terminal.FetchNews(ctx, category, page, pageSize)
		}
	}
	return run(ctx, "news", links, terminal)
}

// QuoteChain is the ordered equity-quote fallback.
type QuoteChain struct {
	providers []domain.QuoteProvider
	terminal  domain.QuoteProvider
}

func NewQuote(terminal domain.QuoteProvider, providers ...domain.QuoteProvider) *QuoteChain {
	return &QuoteChain{providers: providers, terminal: terminal}
}

func (c *QuoteChain) Name() string {
	names := make([]string, 0, len(c.providers)+1)
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	if c.terminal != nil {
		names = append(names, c.terminal.Name())
	}
	return chainName(names)
}

func (c *QuoteChain) GetQuote(ctx context.Context, symbol string) (*domain.StockQuote, error) {
	links := make([]link[*domain.StockQuote], 0, len(c.providers))
	for _, p := range c.providers {
		p := p
		links = append(links, link[*domain.StockQuote]{name: p.Name(), fn: func(ctx context.Context) (*domain.StockQuote, error) {
			return p.GetQuote(ctx, symbol)
		}})
	}
	var terminal func(context.Context) (*domain.StockQuote, error)
	if c.terminal != nil {
		terminal = func(ctx context.Context) (*domain.StockQuote, error) {
			return c.terminal.GetQuote(ctx, symbol)
		}
	}
	return run(ctx, "quote", links, terminal)
}

// CryptoChain is the ordered crypto fallback for listings and detail.
type CryptoChain struct {
	providers []domain.CryptoProvider
	terminal  domain.CryptoProvider
}

func NewCrypto(terminal domain.CryptoProvider, providers ...domain.CryptoProvider) *CryptoChain {
	return &CryptoChain{providers: providers, terminal: terminal}
}

func (c *CryptoChain) Name() string {
	names := make([]string, 0, len(c.providers)+1)
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	if c.terminal != nil {
		names = append(names, c.terminal.Name())
	}
	return chainName(names)
}

func (c *CryptoChain) ListAssets(ctx context.Context, page, perPage int) ([]domain.MarketAsset, error) {
	links := make([]link[[]domain.MarketAsset], 0, len(c.providers))
	for _, p := range c.providers {
		p := p
		links = append(links, link[[]domain.MarketAsset]{name: p.Name(), fn: func(ctx context.Context) ([]domain.MarketAsset, error) {
			return p.ListAssets(ctx, page, perPage)
		}})
	}
	var terminal func(context.Context) ([]domain.MarketAsset, error)
	if c.terminal != nil {
		terminal = func(ctx context.Context) ([]domain.MarketAsset, error) {
			return c.terminal.ListAssets(ctx, page, perPage)
		}
	}
	return run(ctx, "crypto list", links, terminal)
}

func (c *CryptoChain) GetAsset(ctx context.Context, id string) (*domain.MarketAsset, error) {
	links := make([]link[*domain.MarketAsset], 0, len(c.providers))
	for _, p := range c.providers {
		p := p
		links = append(links, link[*domain.MarketAsset]{name: p.Name(), fn: func(ctx context.Context) (*domain.MarketAsset, error) {
			return p.GetAsset(ctx, id)
		}})
	}
	var terminal func(context.Context) (*domain.MarketAsset, error)
	if c.terminal != nil {
		terminal = func(ctx context.Context) (*domain.MarketAsset, error) {
			return c.terminal.GetAsset(ctx, id)
		}
	}
	return run(ctx, "crypto asset", links, terminal)
}

// ChartChain is the ordered historical-series fallback.
type ChartChain struct {
	providers []domain.ChartProvider
	terminal  domain.ChartProvider
}

func NewChart(terminal domain.ChartProvider, providers ...domain.ChartProvider) *ChartChain {
	return &ChartChain{providers: providers, terminal: terminal}
}

func (c *ChartChain) Name() string {
	names := make([]string, 0, len(c.providers)+1)
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	if c.terminal != nil {
		names = append(names, c.terminal.Name())
	}
	return chainName(names)
}

func (c *ChartChain) GetChart(ctx context.Context, assetID string, days int) (*domain.ChartSeries, error) {
	links := make([]link[*domain.ChartSeries], 0, len(c.providers))
	for _, p := range c.providers {
		p := p
		links = append(links, link[*domain.ChartSeries]{name: p.Name(), fn: func(ctx context.Context) (*domain.ChartSeries, error) {
			return p.GetChart(ctx, assetID, days)
		}})
	}
	var terminal func(context.Context) (*domain.ChartSeries, error)
	if c.terminal != nil {
		terminal = func(ctx context.Context) (*domain.ChartSeries, error) {
			return c.terminal.GetChart(ctx, assetID, days)
		}
	}
	return run(ctx, "chart", links, terminal)
}
