// Package coingecko adapts the CoinGecko v3 API to the canonical
// MarketAsset and ChartSeries shapes.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"marketdash/internal/domain"
	"marketdash/internal/domain/apierr"
	"marketdash/internal/httpx"
)

type Config struct {
	Name     string
	BaseURL  string
	APIKey   string // optional demo/pro key, sent as x-cg-demo-api-key
	Currency string // vs_currency, default "usd"
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "CoinGecko"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// marketRow mirrors one element of /coins/markets. Field names stay
// inside this package.
type marketRow struct {
	ID               string   `json:"id"`
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	Image            string   `json:"image"`
	CurrentPrice     float64  `json:"current_price"`
	MarketCap        float64  `json:"market_cap"`
	MarketCapRank    int      `json:"market_cap_rank"`
	TotalVolume      float64  `json:"total_volume"`
	High24h          float64  `json:"high_24h"`
	Low24h           float64  `json:"low_24h"`
	PriceChange24h   float64  `json:"price_change_24h"`
	ChangePct24h     float64  `json:"price_change_percentage_24h"`
	CirculatingSupply float64 `json:"circulating_supply"`
	TotalSupply      *float64 `json:"total_supply"`
	MaxSupply        *float64 `json:"max_supply"`
	ATH              float64  `json:"ath"`
	ATHDate          string   `json:"ath_date"`
	ATL              float64  `json:"atl"`
	ATLDate          string   `json:"atl_date"`
	LastUpdated      string   `json:"last_updated"`
}

func (p *Provider) ListAssets(ctx context.Context, page, perPage int) ([]domain.MarketAsset, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}
	q := url.Values{}
	q.Set("vs_currency", p.cfg.Currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("sparkline", "false")

	var rows []marketRow
	if err := p.getJSON(ctx, "/coins/markets", q, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.MarketAsset, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.normalize())
	}
	return out, nil
}

func (p *Provider) GetAsset(ctx context.Context, id string) (*domain.MarketAsset, error) {
	if id == "" {
		return nil, apierr.Application(p.cfg.Name, "empty asset id")
	}
	q := url.Values{}
	q.Set("vs_currency", p.cfg.Currency)
	q.Set("ids", id)
	q.Set("sparkline", "false")

	var rows []marketRow
	if err := p.getJSON(ctx, "/coins/markets", q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apierr.Application(p.cfg.Name, fmt.Sprintf("unknown asset %q", id))
	}
	a := rows[0].normalize()
	return &a, nil
}

func (p *Provider) GetChart(ctx context.Context, assetID string, days int) (*domain.ChartSeries, error) {
	if days <= 0 {
		days = 7
	}
	q := url.Values{}
	q.Set("vs_currency", p.cfg.Currency)
	q.Set("days", strconv.Itoa(days))

	var body struct {
		Prices [][2]float64 `json:"prices"`
	}
	path := "/coins/" + url.PathEscape(assetID) + "/market_chart"
	if err := p.getJSON(ctx, path, q, &body); err != nil {
		return nil, err
	}
	points := make([]domain.CandlePoint, 0, len(body.Prices))
	for _, pr := range body.Prices {
		points = append(points, domain.CandlePoint{
			Time:  time.UnixMilli(int64(pr[0])).UTC(),
			Price: pr[1],
		})
	}
	return &domain.ChartSeries{AssetID: assetID, Days: days, Points: points}, nil
}

func (p *Provider) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	u := p.cfg.BaseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return apierr.Application(p.cfg.Name, err.Error())
	}
	if p.cfg.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", p.cfg.APIKey)
	}
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return apierr.Network(p.cfg.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// CoinGecko wraps rate-limit details in a status envelope.
		var e struct {
			Status struct {
				ErrorMessage string `json:"error_message"`
			} `json:"status"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		if json.Unmarshal(b, &e) == nil && e.Status.ErrorMessage != "" {
			return apierr.Application(p.cfg.Name, e.Status.ErrorMessage)
		}
		return apierr.HTTPStatus(p.cfg.Name, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return apierr.Application(p.cfg.Name, fmt.Sprintf("decode response: %v", err))
	}
	return nil
}

func (r marketRow) normalize() domain.MarketAsset {
	a := domain.MarketAsset{
		ID:                r.ID,
		Symbol:            r.Symbol,
		Name:              r.Name,
		Image:             r.Image,
		CurrentPrice:      r.CurrentPrice,
		High24h:           r.High24h,
		Low24h:            r.Low24h,
		PriceChange24h:    r.PriceChange24h,
		ChangePercent24h:  r.ChangePct24h,
		MarketCap:         r.MarketCap,
		MarketCapRank:     r.MarketCapRank,
		TotalVolume:       r.TotalVolume,
		CirculatingSupply: r.CirculatingSupply,
		ATH:               r.ATH,
		ATL:               r.ATL,
		ATHDate:           parseTime(r.ATHDate),
		ATLDate:           parseTime(r.ATLDate),
		LastUpdated:       parseTime(r.LastUpdated),
	}
	if r.TotalSupply != nil {
		a.TotalSupply = *r.TotalSupply
	}
	if r.MaxSupply != nil {
		a.MaxSupply = *r.MaxSupply
	}
	return a
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
