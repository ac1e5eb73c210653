package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"marketdash/internal/app"
	"marketdash/internal/domain"
	"marketdash/internal/favorites"
	"marketdash/internal/loader"
	"marketdash/internal/prefs"
	"marketdash/internal/view"
)

// server holds the app graph plus one loader per logical cache key, so
// every endpoint gets the stale-while-revalidate treatment without each
// request rebuilding state.
type server struct {
	app *app.App

	mu      sync.Mutex
	loaders map[string]any
}

func newRouter(a *app.App) http.Handler {
	s := &server{app: a, loaders: make(map[string]any)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /api/crypto", s.handleCryptoList)
	mux.HandleFunc("GET /api/crypto/{id}", s.handleCryptoDetail)
	mux.HandleFunc("GET /api/crypto/{id}/chart", s.handleCryptoChart)
	mux.HandleFunc("GET /api/quote", s.handleQuote)
	mux.HandleFunc("GET /api/news", s.handleNews)
	mux.HandleFunc("GET /api/favorites", s.handleFavoritesList)
	mux.HandleFunc("POST /api/favorites", s.handleFavoritesToggle)
	mux.HandleFunc("DELETE /api/favorites", s.handleFavoritesToggle)
	mux.HandleFunc("GET /api/preferences", s.handlePrefsGet)
	mux.HandleFunc("PUT /api/preferences", s.handlePrefsPut)
	return mux
}

// loaderFor returns the loader registered under key, creating it with mk
// on first use. Loaders are type-homogeneous per key.
func loaderFor[T any](s *server, key string, mk func() *loader.Loader[T]) *loader.Loader[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.loaders[key]; ok {
		return l.(*loader.Loader[T])
	}
	l := mk()
	s.loaders[key] = l
	return l
}

type listResponse struct {
	Assets     []domain.MarketAsset `json:"assets"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PerPage    int                  `json:"per_page"`
	TotalPages int                  `json:"total_pages"`
	Stale      bool                 `json:"stale,omitempty"`
	Error      string               `json:"error,omitempty"`
}

func (s *server) handleCryptoList(w http.ResponseWriter, r *http.Request) {
	page := intParam(r, "page", 1)
	perPage := intParam(r, "per_page", 10)
	key := fmt.Sprintf("crypto-data-%d-%d", page, perPage)

	l := loaderFor(s, key, func() *loader.Loader[[]domain.MarketAsset] {
		opts := []loader.Option[[]domain.MarketAsset]{}
		if s.app.CryptoGate != nil {
			opts = append(opts, loader.WithGate[[]domain.MarketAsset](s.app.CryptoGate))
		}
		return loader.New(s.app.Cache, key, func(ctx context.Context) ([]domain.MarketAsset, error) {
			return s.app.Crypto.ListAssets(ctx, page, perPage)
		}, opts...)
	})
	snap := l.Get(r.Context())
	if snap.Data == nil {
		// No live data and nothing cached: the one user-visible failure.
		writeError(w, http.StatusBadGateway, "couldn't load data, try again later")
		return
	}

	q := view.Query{
		Search:        r.URL.Query().Get("search"),
		Sort:          view.SortKey(r.URL.Query().Get("sort")),
		Desc:          r.URL.Query().Get("order") != "asc",
		FavoritesOnly: r.URL.Query().Get("favorites") == "true",
		IsFavorite: func(id string) bool {
			return s.app.Favorites.IsFavorite(id, domain.KindCrypto)
		},
		Page:    1,
		PerPage: perPage,
	}
	res := view.Apply(*snap.Data, q)
	writeJSON(w, http.StatusOK, listResponse{
		Assets:     res.Assets,
		Total:      res.Total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: res.TotalPages,
		Stale:      snap.Stale,
		Error:      snap.Err,
	})
}

type detailResponse[T any] struct {
	Data  T      `json:"data"`
	Stale bool   `json:"stale,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *server) handleCryptoDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	key := "crypto-coin-" + id
	l := loaderFor(s, key, func() *loader.Loader[*domain.MarketAsset] {
		return loader.New(s.app.Cache, key, func(ctx context.Context) (*domain.MarketAsset, error) {
			return s.app.Crypto.GetAsset(ctx, id)
		})
	})
	snap := l.Get(r.Context())
	if snap.Data == nil {
		writeError(w, http.StatusBadGateway, "couldn't load data, try again later")
		return
	}
	writeJSON(w, http.StatusOK, detailResponse[*domain.MarketAsset]{Data: *snap.Data, Stale: snap.Stale, Error: snap.Err})
}

func (s *server) handleCryptoChart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	days := intParam(r, "days", 7)
	key := fmt.Sprintf("crypto-chart-%s-%d", id, days)
	l := loaderFor(s, key, func() *loader.Loader[*domain.ChartSeries] {
		return loader.New(s.app.Cache, key, func(ctx context.Context) (*domain.ChartSeries, error) {
			return s.app.Charts.GetChart(ctx, id, days)
		})
	})
	snap := l.Get(r.Context())
	if snap.Data == nil {
		writeError(w, http.StatusBadGateway, "couldn't load data, try again later")
		return
	}
	writeJSON(w, http.StatusOK, detailResponse[*domain.ChartSeries]{Data: *snap.Data, Stale: snap.Stale, Error: snap.Err})
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol query param")
		return
	}
	key := "stock-quote-" + symbol
	l := loaderFor(s, key, func() *loader.Loader[*domain.StockQuote] {
		return loader.New(s.app.Cache, key, func(ctx context.Context) (*domain.StockQuote, error) {
			return s.app.Quotes.GetQuote(ctx, symbol)
		})
	})
	snap := l.Get(r.Context())
	if snap.Data == nil {
		writeError(w, http.StatusBadGateway, "couldn't load data, try again later")
		return
	}
	writeJSON(w, http.StatusOK, detailResponse[*domain.StockQuote]{Data: *snap.Data, Stale: snap.Stale, Error: snap.Err})
}

func (s *server) handleNews(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "business"
	}
	page := intParam(r, "page", 1)
	pageSize := intParam(r, "page_size", 10)
	key := fmt.Sprintf("news-%s-%d-%d", category, page, pageSize)
	l := loaderFor(s, key, func() *loader.Loader[*domain.NewsPage] {
		return loader.New(s.app.Cache, key, func(ctx context.Context) (*domain.NewsPage, error) {
			np, err := s.app.News.FetchNews(ctx, category, page, pageSize)
			if err != nil {
				return nil, err
			}
			np.Articles = view.DedupeArticles(np.Articles)
			return np, nil
		})
	})
	snap := l.Get(r.Context())
	if snap.Data == nil {
		writeError(w, http.StatusBadGateway, "couldn't load data, try again later")
		return
	}
	writeJSON(w, http.StatusOK, detailResponse[*domain.NewsPage]{Data: *snap.Data, Stale: snap.Stale, Error: snap.Err})
}

type favoritesResponse struct {
	Crypto []string `json:"crypto"`
	Stocks []string `json:"stocks"`
}

func (s *server) handleFavoritesList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		if err := s.app.Favorites.Refresh(r.Context()); err != nil {
			if err == favorites.ErrNotSignedIn {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, favoritesResponse{
		Crypto: s.app.Favorites.IDs(domain.KindCrypto),
		Stocks: s.app.Favorites.IDs(domain.KindStock),
	})
}

type toggleRequest struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type toggleResponse struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Favorite bool   `json:"favorite"`
}

func (s *server) handleFavoritesToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if r.Method == http.MethodDelete {
		req.ID = r.URL.Query().Get("id")
		req.Kind = r.URL.Query().Get("kind")
	} else {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	kind := domain.FavoriteKind(req.Kind)
	if kind != domain.KindCrypto && kind != domain.KindStock {
		writeError(w, http.StatusBadRequest, `kind must be "coin" or "stock"`)
		return
	}
	// DELETE is only meaningful for a current favorite.
	if r.Method == http.MethodDelete && !s.app.Favorites.IsFavorite(req.ID, kind) {
		writeJSON(w, http.StatusOK, toggleResponse{ID: req.ID, Kind: req.Kind, Favorite: false})
		return
	}
	fav, err := s.app.Favorites.Toggle(r.Context(), req.ID, kind)
	if err != nil {
		if err == favorites.ErrNotSignedIn {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{ID: req.ID, Kind: req.Kind, Favorite: fav})
}

func (s *server) handlePrefsGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Prefs.Current())
}

type prefsRequest struct {
	Theme         *string         `json:"theme,omitempty"`
	Notifications map[string]bool `json:"notifications,omitempty"`
}

func (s *server) handlePrefsPut(w http.ResponseWriter, r *http.Request) {
	var req prefsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Theme != nil {
		t := prefs.Theme(*req.Theme)
		if t != prefs.ThemeLight && t != prefs.ThemeDark {
			writeError(w, http.StatusBadRequest, `theme must be "light" or "dark"`)
			return
		}
		s.app.Prefs.SetTheme(t)
	}
	for feature, on := range req.Notifications {
		s.app.Prefs.SetNotification(feature, on)
	}
	writeJSON(w, http.StatusOK, s.app.Prefs.Current())
}

func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
