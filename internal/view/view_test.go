package view_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdash/internal/domain"
	"marketdash/internal/view"
)

func asset(id, name, symbol string, cap float64) domain.MarketAsset {
	return domain.MarketAsset{ID: id, Name: name, Symbol: symbol, MarketCap: cap}
}

func TestSearchMatchesNameAndSymbol(t *testing.T) {
	assets := []domain.MarketAsset{
		asset("bitcoin", "Bitcoin", "btc", 1),
		asset("ethereum", "Ethereum", "eth", 2),
		asset("bitcoin-cash", "Bitcoin Cash", "bch", 3),
	}

	res := view.Apply(assets, view.Query{Search: "  BiT  "})
	require.Equal(t, 2, res.Total)
	assert.Equal(t, "bitcoin", res.Assets[0].ID)
	assert.Equal(t, "bitcoin-cash", res.Assets[1].ID)

	// Symbol-only hits count too.
	res = view.Apply(assets, view.Query{Search: "ETH"})
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "ethereum", res.Assets[0].ID)
}

func TestSortIsStableOnEqualKeys(t *testing.T) {
	// Three assets share a market cap; their input order must survive.
	assets := []domain.MarketAsset{
		asset("a", "A", "a", 50),
		asset("b", "B", "b", 100),
		asset("c", "C", "c", 50),
		asset("d", "D", "d", 50),
	}

	res := view.Apply(assets, view.Query{Sort: view.SortMarketCap})
	ids := make([]string, 0, len(res.Assets))
	for _, a := range res.Assets {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids)

	res = view.Apply(assets, view.Query{Sort: view.SortMarketCap, Desc: true})
	ids = ids[:0]
	for _, a := range res.Assets {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids)
}

func TestUnknownSortKeepsOriginalOrder(t *testing.T) {
	assets := []domain.MarketAsset{
		asset("b", "B", "b", 2),
		asset("a", "A", "a", 1),
	}
	res := view.Apply(assets, view.Query{Sort: "shoe-size"})
	assert.Equal(t, "b", res.Assets[0].ID)
	assert.Equal(t, "a", res.Assets[1].ID)
}

func TestDisplayCap(t *testing.T) {
	assets := make([]domain.MarketAsset, 0, 150)
	for i := 0; i < 150; i++ {
		assets = append(assets, asset(fmt.Sprintf("coin-%03d", i), "Coin", "c", float64(i)))
	}

	res := view.Apply(assets, view.Query{PerPage: 200})
	assert.Equal(t, view.MaxDisplayItems, res.Total)
	assert.Len(t, res.Assets, view.MaxDisplayItems)
	assert.Equal(t, 1, res.TotalPages)
}

func TestFavoritesFilter(t *testing.T) {
	assets := []domain.MarketAsset{
		asset("bitcoin", "Bitcoin", "btc", 1),
		asset("ethereum", "Ethereum", "eth", 2),
	}
	fav := map[string]bool{"ethereum": true}

	res := view.Apply(assets, view.Query{
		FavoritesOnly: true,
		IsFavorite:    func(id string) bool { return fav[id] },
	})
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "ethereum", res.Assets[0].ID)

	// Without a membership function the filter yields nothing rather
	// than letting everything through.
	res = view.Apply(assets, view.Query{FavoritesOnly: true})
	assert.Zero(t, res.Total)
}

func TestPagination(t *testing.T) {
	assets := make([]domain.MarketAsset, 0, 25)
	for i := 0; i < 25; i++ {
		assets = append(assets, asset(fmt.Sprintf("coin-%02d", i), "Coin", "c", 0))
	}

	res := view.Apply(assets, view.Query{Page: 3, PerPage: 10})
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, 3, res.TotalPages)
	require.Len(t, res.Assets, 5)
	assert.Equal(t, "coin-20", res.Assets[0].ID)

	// A page past the end is empty but keeps the totals.
	res = view.Apply(assets, view.Query{Page: 9, PerPage: 10})
	assert.Empty(t, res.Assets)
	assert.Equal(t, 25, res.Total)

	// Zero values fall back to page 1, ten per page.
	res = view.Apply(assets, view.Query{})
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.PerPage)
	assert.Len(t, res.Assets, 10)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	assets := []domain.MarketAsset{
		asset("b", "B", "b", 2),
		asset("a", "A", "a", 1),
	}
	view.Apply(assets, view.Query{Sort: view.SortMarketCap})
	assert.Equal(t, "b", assets[0].ID)
	assert.Equal(t, "a", assets[1].ID)
}

func TestDedupeArticles(t *testing.T) {
	articles := []domain.NewsArticle{
		{Title: "Markets rally", URL: "https://example.com/1", SourceName: "first"},
		{Title: "Markets rally", URL: "https://example.com/1", SourceName: "dup"},
		{Title: "Markets rally", URL: "https://example.com/2"},
		{Title: "Fed holds", URL: "https://example.com/1"},
	}

	out := view.DedupeArticles(articles)
	require.Len(t, out, 3)
	// First occurrence wins.
	assert.Equal(t, "first", out[0].SourceName)
}
