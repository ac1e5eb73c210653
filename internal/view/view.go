// Package view derives listing-page state from an in-memory collection:
// search, sort, favorites filter, and pagination. Everything here is a
// pure, synchronous transformation; the inputs decide the output and
// nothing is mutated.
package view

import (
	"sort"
	"strings"

	"marketdash/internal/domain"
)

// SortKey selects the numeric field a listing is ordered by.
type SortKey string

const (
	SortPrice     SortKey = "price"
	SortMarketCap SortKey = "market_cap"
	SortChangePct SortKey = "change_pct"
	SortVolume    SortKey = "volume"
)

// MaxDisplayItems caps the total displayable rows regardless of how many
// the underlying collection holds.
const MaxDisplayItems = 100

// Query is the UI-control state a listing is derived from.
type Query struct {
	Search        string
	Sort          SortKey
	Desc          bool
	FavoritesOnly bool
	// IsFavorite backs the favorites filter; nil disables it.
	IsFavorite func(id string) bool
	Page       int
	PerPage    int
}

// Result is one derived page plus the totals the pager needs.
type Result struct {
	Assets     []domain.MarketAsset
	Total      int // post-filter, post-cap
	Page       int
	PerPage    int
	TotalPages int
}

// Apply filters, sorts, caps, and paginates assets. The sort is stable:
// assets comparing equal keep their original relative order. The input
// slice is left untouched.
func Apply(assets []domain.MarketAsset, q Query) Result {
	filtered := make([]domain.MarketAsset, 0, len(assets))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, a := range assets {
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Name), needle) &&
			!strings.Contains(strings.ToLower(a.Symbol), needle) {
			continue
		}
		if q.FavoritesOnly {
			if q.IsFavorite == nil || !q.IsFavorite(a.ID) {
				continue
			}
		}
		filtered = append(filtered, a)
	}

	if key := keyFunc(q.Sort); key != nil {
		sort.SliceStable(filtered, func(i, j int) bool {
			if q.Desc {
				return key(filtered[i]) > key(filtered[j])
			}
			return key(filtered[i]) < key(filtered[j])
		})
	}

	if len(filtered) > MaxDisplayItems {
		filtered = filtered[:MaxDisplayItems]
	}

	page := q.Page
	if page <= 0 {
		page = 1
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	totalPages := (len(filtered) + perPage - 1) / perPage
	start := (page - 1) * perPage
	var window []domain.MarketAsset
	if start < len(filtered) {
		end := start + perPage
		if end > len(filtered) {
			end = len(filtered)
		}
		window = filtered[start:end]
	}
	return Result{
		Assets:     window,
		Total:      len(filtered),
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}

func keyFunc(k SortKey) func(domain.MarketAsset) float64 {
	switch k {
	case SortPrice:
		return func(a domain.MarketAsset) float64 { return a.CurrentPrice }
	case SortMarketCap:
		return func(a domain.MarketAsset) float64 { return a.MarketCap }
	case SortChangePct:
		return func(a domain.MarketAsset) float64 { return a.ChangePercent24h }
	case SortVolume:
		return func(a domain.MarketAsset) float64 { return a.TotalVolume }
	}
	return nil
}

// DedupeArticles drops repeated articles, keeping the first of each
// (title, url) pair.
func DedupeArticles(articles []domain.NewsArticle) []domain.NewsArticle {
	type key struct{ title, url string }
	seen := make(map[key]struct{}, len(articles))
	out := make([]domain.NewsArticle, 0, len(articles))
	for _, a := range articles {
		k := key{a.Title, a.URL}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}
