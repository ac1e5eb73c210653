// Package finnhub adapts the Finnhub v1 API. It is the fallback source
// for equity quotes and the tertiary source for category news, so its
// float payloads are normalized into the same string-shaped StockQuote
// the primary provider produces.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketdash/internal/domain"
	"marketdash/internal/domain/apierr"
	"marketdash/internal/httpx"
)

type Config struct {
	Name    string
	BaseURL string
	APIKey  string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "Finnhub"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://finnhub.io/api/v1"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

type quoteBody struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

func (p *Provider) GetQuote(ctx context.Context, symbol string) (*domain.StockQuote, error) {
	if symbol == "" {
		return nil, apierr.Application(p.cfg.Name, "empty symbol")
	}
	q := url.Values{}
	q.Set("symbol", strings.ToUpper(symbol))

	var body quoteBody
	if err := p.getJSON(ctx, "/quote", q, &body); err != nil {
		return nil, err
	}
	// Finnhub answers unknown symbols with an all-zero quote.
	if body.Current == 0 && body.Timestamp == 0 {
		return nil, apierr.Application(p.cfg.Name, fmt.Sprintf("no quote for %q", symbol))
	}
	day := ""
	if body.Timestamp > 0 {
		day = time.Unix(body.Timestamp, 0).UTC().Format("2006-01-02")
	}
	return &domain.StockQuote{
		Symbol:           strings.ToUpper(symbol),
		Open:             formatFloat(body.Open),
		High:             formatFloat(body.High),
		Low:              formatFloat(body.Low),
		Price:            formatFloat(body.Current),
		Volume:           "",
		PreviousClose:    formatFloat(body.PreviousClose),
		Change:           formatFloat(body.Change),
		ChangePercent:    formatFloat(body.ChangePercent) + "%",
		LatestTradingDay: day,
		Source:           p.cfg.Name,
	}, nil
}

type newsItem struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	Source   string `json:"source"`
	Datetime int64  `json:"datetime"`
}

// FetchNews fetches /news for the category. The endpoint is unpaged, so
// the page window is applied over the returned list.
func (p *Provider) FetchNews(ctx context.Context, category string, page, pageSize int) (*domain.NewsPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	cat := category
	switch cat {
	case "", "business", "finance":
		cat = "general"
	case "technology":
		cat = "general"
	}
	q := url.Values{}
	q.Set("category", cat)

	var items []newsItem
	if err := p.getJSON(ctx, "/news", q, &items); err != nil {
		return nil, err
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return &domain.NewsPage{Category: category, Page: page, PageSize: pageSize}, nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	articles := make([]domain.NewsArticle, 0, end-start)
	for _, it := range items[start:end] {
		articles = append(articles, domain.NewsArticle{
			Title:       it.Headline,
			Description: it.Summary,
			URL:         it.URL,
			Image:       it.Image,
			PublishedAt: time.Unix(it.Datetime, 0).UTC(),
			SourceName:  it.Source,
		})
	}
	return &domain.NewsPage{Category: category, Page: page, PageSize: pageSize, Articles: articles}, nil
}

func (p *Provider) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	if p.cfg.APIKey != "" {
		q.Set("token", p.cfg.APIKey)
	}
	u := p.cfg.BaseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return apierr.Application(p.cfg.Name, err.Error())
	}
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return apierr.Network(p.cfg.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apierr.HTTPStatus(p.cfg.Name, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return apierr.Network(p.cfg.Name, err)
	}
	// A 200 body can still carry {"error": "..."} on limit breaches.
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return apierr.Application(p.cfg.Name, e.Error)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return apierr.Application(p.cfg.Name, fmt.Sprintf("decode response: %v", err))
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
