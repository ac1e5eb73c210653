package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"

	"marketdash/internal/domain"
	"marketdash/internal/domain/apierr"
)

const providerName = "AlphaVantage"

func (c *Client) Name() string { return providerName }

// globalQuote mirrors the numbered-key shape AlphaVantage uses for
// GLOBAL_QUOTE. The numbers never leave this package.
type globalQuote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

// GetQuote fetches GLOBAL_QUOTE for symbol and normalizes it. Quote
// strings pass through untouched to preserve the provider's precision.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.StockQuote, error) {
	if symbol == "" {
		return nil, apierr.Application(providerName, "empty symbol")
	}
	var body struct {
		GlobalQuote *globalQuote `json:"Global Quote"`
		bodyError
	}
	if err := c.getJSON(ctx, map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   symbol,
	}, &body); err != nil {
		return nil, err
	}
	if msg := body.errorMessage(); msg != "" {
		return nil, apierr.Application(providerName, msg)
	}
	if body.GlobalQuote == nil || body.GlobalQuote.Symbol == "" {
		return nil, apierr.Application(providerName, fmt.Sprintf("no quote for %q", symbol))
	}
	g := body.GlobalQuote
	return &domain.StockQuote{
		Symbol:           g.Symbol,
		Open:             g.Open,
		High:             g.High,
		Low:              g.Low,
		Price:            g.Price,
		Volume:           g.Volume,
		PreviousClose:    g.PreviousClose,
		Change:           g.Change,
		ChangePercent:    g.ChangePercent,
		LatestTradingDay: g.LatestTradingDay,
		Source:           providerName,
	}, nil
}

// bodyError collects the fields AlphaVantage uses to signal failure
// inside an otherwise-200 response.
type bodyError struct {
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
	Information  string `json:"Information"`
}

func (b bodyError) errorMessage() string {
	switch {
	case b.ErrorMessage != "":
		return b.ErrorMessage
	case b.Note != "":
		return b.Note
	case b.Information != "":
		return b.Information
	}
	return ""
}

func (c *Client) getJSON(ctx context.Context, params map[string]string, dst any) error {
	query := maps.Clone(c.query)
	for k, v := range params {
		query.Set(k, v)
	}
	u := fmt.Sprintf("%s/query?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return apierr.Application(providerName, err.Error())
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.Network(providerName, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return apierr.HTTPStatus(providerName, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return apierr.Application(providerName, fmt.Sprintf("decode response: %v", err))
	}
	return nil
}
