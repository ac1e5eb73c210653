package domain

import (
	"context"
	"time"
)

// MarketAsset is the normalized cryptocurrency record returned by all
// crypto providers. Instances are immutable snapshots: a fresh fetch
// replaces the whole record, it is never patched field by field.
type MarketAsset struct {
	ID               string    `json:"id"`
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name"`
	Image            string    `json:"image,omitempty"`
	CurrentPrice     float64   `json:"current_price"`
	High24h          float64   `json:"high_24h"`
	Low24h           float64   `json:"low_24h"`
	PriceChange24h   float64   `json:"price_change_24h"`
	ChangePercent24h float64   `json:"price_change_percentage_24h"`
	MarketCap        float64   `json:"market_cap"`
	MarketCapRank    int       `json:"market_cap_rank"`
	TotalVolume      float64   `json:"total_volume"`
	CirculatingSupply float64  `json:"circulating_supply"`
	TotalSupply      float64   `json:"total_supply,omitempty"`
	MaxSupply        float64   `json:"max_supply,omitempty"`
	ATH              float64   `json:"ath"`
	ATHDate          time.Time `json:"ath_date,omitzero"`
	ATL              float64   `json:"atl"`
	ATLDate          time.Time `json:"atl_date,omitzero"`
	LastUpdated      time.Time `json:"last_updated,omitzero"`
}

// StockQuote is the normalized equity record. Both the primary and the
// fallback quote provider must produce this one shape; upstream field
// names (including AlphaVantage's numbered keys) stay inside the adapter.
type StockQuote struct {
	Symbol string `json:"symbol"`
	// Prices are kept as strings exactly as the provider supplied them
	// to avoid float rounding on passthrough.
	Open             string `json:"open"`
	High             string `json:"high"`
	Low              string `json:"low"`
	Price            string `json:"price"`
	Volume           string `json:"volume"`
	PreviousClose    string `json:"previous_close"`
	Change           string `json:"change"`
	ChangePercent    string `json:"change_percent"`
	LatestTradingDay string `json:"latest_trading_day"`
	Source           string `json:"source,omitempty"`
}

// CandlePoint is one point of a historical price series.
type CandlePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// ChartSeries is a historical series for one asset.
type ChartSeries struct {
	AssetID string        `json:"asset_id"`
	Days    int           `json:"days"`
	Points  []CandlePoint `json:"points"`
}

// NewsArticle is the normalized news record. The deduplication key is
// the (Title, URL) pair.
type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Image       string    `json:"image,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	SourceID    string    `json:"source_id,omitempty"`
	SourceName  string    `json:"source_name"`
}

// NewsPage is one page of articles for a category.
type NewsPage struct {
	Category string        `json:"category"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Articles []NewsArticle `json:"articles"`
}

// FavoriteKind discriminates favorited asset types.
type FavoriteKind string

const (
	KindCrypto FavoriteKind = "coin"
	KindStock  FavoriteKind = "stock"
)

// FavoriteRecord is one favorited asset owned by a user.
type FavoriteRecord struct {
	UserID  string       `json:"user_id"`
	AssetID string       `json:"asset_id"`
	Kind    FavoriteKind `json:"kind"`
}

// CryptoProvider supplies cryptocurrency market data.
type CryptoProvider interface {
	Name() string
	ListAssets(ctx context.Context, page, perPage int) ([]MarketAsset, error)
	GetAsset(ctx context.Context, id string) (*MarketAsset, error)
}

// ChartProvider supplies historical price series.
type ChartProvider interface {
	Name() string
	GetChart(ctx context.Context, assetID string, days int) (*ChartSeries, error)
}

// QuoteProvider supplies equity quotes.
type QuoteProvider interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*StockQuote, error)
}

// NewsProvider supplies financial news by category.
type NewsProvider interface {
	Name() string
	FetchNews(ctx context.Context, category string, page, pageSize int) (*NewsPage, error)
}
