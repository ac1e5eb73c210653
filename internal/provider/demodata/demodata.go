// Package demodata serves a static, embedded snapshot of market data. It
// terminates every fallback chain: each operation slices the snapshot
// deterministically to the requested window and never returns an error.
package demodata

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"time"

	"marketdash/internal/domain"
)

//go:embed assets.json
var assetsJSON []byte

//go:embed news.json
var newsJSON []byte

//go:embed quotes.json
var quotesJSON []byte

const name = "Demo"

type Provider struct {
	assets    []domain.MarketAsset
	articles  []domain.NewsArticle
	quoteList []domain.StockQuote
	quotes    map[string]domain.StockQuote
}

func New() *Provider {
	p := &Provider{quotes: make(map[string]domain.StockQuote)}
	// The embedded files are fixtures shipped with the binary; a decode
	// failure is a build defect, not a runtime condition.
	_ = json.Unmarshal(assetsJSON, &p.assets)
	_ = json.Unmarshal(newsJSON, &p.articles)
	_ = json.Unmarshal(quotesJSON, &p.quoteList)
	for _, q := range p.quoteList {
		p.quotes[strings.ToUpper(q.Symbol)] = q
	}
	return p
}

func (p *Provider) Name() string { return name }

func (p *Provider) ListAssets(_ context.Context, page, perPage int) ([]domain.MarketAsset, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}
	start := (page - 1) * perPage
	if start >= len(p.assets) {
		return []domain.MarketAsset{}, nil
	}
	end := start + perPage
	if end > len(p.assets) {
		end = len(p.assets)
	}
	out := make([]domain.MarketAsset, end-start)
	copy(out, p.assets[start:end])
	return out, nil
}

func (p *Provider) GetAsset(_ context.Context, id string) (*domain.MarketAsset, error) {
	for _, a := range p.assets {
		if a.ID == id || strings.EqualFold(a.Symbol, id) {
			cp := a
			return &cp, nil
		}
	}
	// Unknown ids still succeed with the first asset so the chain
	// terminal keeps its never-fail contract.
	cp := p.assets[0]
	cp.ID = id
	return &cp, nil
}

// GetChart synthesizes a deterministic series around the asset's demo
// price so charts render offline.
func (p *Provider) GetChart(_ context.Context, assetID string, days int) (*domain.ChartSeries, error) {
	if days <= 0 {
		days = 7
	}
	base := 100.0
	for _, a := range p.assets {
		if a.ID == assetID {
			base = a.CurrentPrice
			break
		}
	}
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	points := make([]domain.CandlePoint, 0, days+1)
	for i := 0; i <= days; i++ {
		// Fixed sawtooth, so the same request always yields the same series.
		drift := float64(i%5-2) / 100
		points = append(points, domain.CandlePoint{
			Time:  end.AddDate(0, 0, i-days),
			Price: base * (1 + drift),
		})
	}
	return &domain.ChartSeries{AssetID: assetID, Days: days, Points: points}, nil
}

func (p *Provider) GetQuote(_ context.Context, symbol string) (*domain.StockQuote, error) {
	if q, ok := p.quotes[strings.ToUpper(symbol)]; ok {
		cp := q
		return &cp, nil
	}
	if len(p.quoteList) > 0 {
		cp := p.quoteList[0]
		cp.Symbol = strings.ToUpper(symbol)
		return &cp, nil
	}
	return &domain.StockQuote{Symbol: strings.ToUpper(symbol), Source: name}, nil
}

func (p *Provider) FetchNews(_ context.Context, category string, page, pageSize int) (*domain.NewsPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	start := (page - 1) * pageSize
	out := &domain.NewsPage{Category: category, Page: page, PageSize: pageSize}
	if start >= len(p.articles) {
		return out, nil
	}
	end := start + pageSize
	if end > len(p.articles) {
		end = len(p.articles)
	}
	out.Articles = make([]domain.NewsArticle, end-start)
	copy(out.Articles, p.articles[start:end])
	return out, nil
}
