package finnhub_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdash/internal/domain/apierr"
	"marketdash/internal/httpx"
	"marketdash/internal/provider/finnhub"
)

func newProvider(t *testing.T, handler http.HandlerFunc) *finnhub.Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return finnhub.New(finnhub.Config{BaseURL: srv.URL, APIKey: "test"}, httpx.New(5*time.Second))
}

func TestGetQuoteNormalizesFloats(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		require.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		require.Equal(t, "test", r.URL.Query().Get("token"))
		w.Write([]byte(`{"c": 189.87, "d": -1.13, "dp": -0.5915, "h": 191.0, "l": 189.5, "o": 190.8, "pc": 191.0, "t": 1715356800}`))
	})

	quote, err := p.GetQuote(t.Context(), "aapl")
	require.NoError(t, err)
	require.Equal(t, "AAPL", quote.Symbol)
	require.Equal(t, "189.87", quote.Price)
	require.Equal(t, "-1.13", quote.Change)
	require.Equal(t, "-0.5915%", quote.ChangePercent)
	require.Equal(t, "191", quote.PreviousClose)
	require.Equal(t, "2024-05-10", quote.LatestTradingDay)
	require.Empty(t, quote.Volume)
	require.Equal(t, "Finnhub", quote.Source)
}

func TestGetQuoteUnknownSymbol(t *testing.T) {
	t.Parallel()

	// Finnhub answers unknown symbols with all zeroes rather than a 404.
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c": 0, "d": 0, "dp": 0, "h": 0, "l": 0, "o": 0, "pc": 0, "t": 0}`))
	})

	quote, err := p.GetQuote(t.Context(), "NOPE")
	require.Nil(t, quote)
	require.Equal(t, apierr.KindApplication, apierr.KindOf(err))
}

func TestGetQuoteErrorInBody(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "API limit reached."}`))
	})

	quote, err := p.GetQuote(t.Context(), "AAPL")
	require.Nil(t, quote)
	require.Equal(t, apierr.KindApplication, apierr.KindOf(err))
	require.Contains(t, err.Error(), "API limit reached")
}

func TestGetQuoteHTTPStatus(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	quote, err := p.GetQuote(t.Context(), "AAPL")
	require.Nil(t, quote)
	require.Equal(t, apierr.KindHTTPStatus, apierr.KindOf(err))
}

func TestFetchNewsWindow(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/news", r.URL.Path)
		require.Equal(t, "general", r.URL.Query().Get("category"))
		w.Write([]byte(`[
			{"headline": "one", "url": "https://example.com/1", "source": "Wire", "datetime": 1715356800},
			{"headline": "two", "url": "https://example.com/2", "source": "Wire", "datetime": 1715356700},
			{"headline": "three", "url": "https://example.com/3", "source": "Wire", "datetime": 1715356600}
		]`))
	})

	page, err := p.FetchNews(t.Context(), "business", 2, 2)
	require.NoError(t, err)
	require.Equal(t, "business", page.Category)
	require.Len(t, page.Articles, 1)
	require.Equal(t, "three", page.Articles[0].Title)
	require.Equal(t, time.Unix(1715356600, 0).UTC(), page.Articles[0].PublishedAt)
}

func TestFetchNewsPastTheEnd(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	page, err := p.FetchNews(t.Context(), "crypto", 4, 10)
	require.NoError(t, err)
	require.Empty(t, page.Articles)
	require.Equal(t, 4, page.Page)
}
