// Package app wires configuration into the object graph shared by the
// server and the CLI: cache store, provider chains, favorites service,
// preferences, and the notification bus.
package app

import (
	"fmt"
	"time"

	"marketdash/internal/cachestore"
	"marketdash/internal/config"
	"marketdash/internal/domain"
	"marketdash/internal/favorites"
	"marketdash/internal/httpx"
	"marketdash/internal/loader"
	"marketdash/internal/notify"
	"marketdash/internal/prefs"
	"marketdash/internal/provider/alphavantage"
	"marketdash/internal/provider/coingecko"
	"marketdash/internal/provider/demodata"
	"marketdash/internal/provider/fallback"
	"marketdash/internal/provider/finnhub"
	"marketdash/internal/provider/gnews"
	"marketdash/internal/ratelimit"
	"marketdash/internal/store"
)

type App struct {
	Config config.Config
	Cache  *cachestore.Store

	Crypto *fallback.CryptoChain
	Charts *fallback.ChartChain
	Quotes *fallback.QuoteChain
	News   *fallback.NewsChain

	// CryptoGate throttles crypto refetches against the listing
	// provider's rate limit; nil when unlimited.
	CryptoGate loader.Gate

	Favorites *favorites.Service
	Prefs     *prefs.Manager
	Bus       *notify.Bus

	db *store.Store
}

// New builds the full graph from cfg. Offline disables every live
// provider so each chain collapses to its demo terminal.
func New(cfg config.Config, offline bool) (*App, error) {
	var backend cachestore.Storage
	if cfg.Cache.Path != "" {
		f, err := cachestore.OpenFile(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		backend = f
	} else {
		backend = cachestore.NewMemory()
	}
	cache := cachestore.New(backend)

	hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
	demo := demodata.New()

	var cryptoProviders []domain.CryptoProvider
	var chartProviders []domain.ChartProvider
	var cryptoGate loader.Gate
	if cfg.CoinGecko.Enabled && !offline {
		cg := coingecko.New(coingecko.Config{
			BaseURL:  cfg.CoinGecko.Endpoint,
			APIKey:   cfg.CoinGecko.APIKey,
			Currency: cfg.CoinGecko.Currency,
		}, hc)
		cryptoProviders = append(cryptoProviders, cg)
		chartProviders = append(chartProviders, cg)
		if cfg.CoinGecko.MaxRequestsPerMinute > 0 {
			burst := cfg.CoinGecko.Burst
			if burst <= 0 {
				burst = 1
			}
			cryptoGate = ratelimit.NewTokenBucket(float64(cfg.CoinGecko.MaxRequestsPerMinute)/60.0, burst)
		} else if cfg.CoinGecko.MinRequestIntervalSec > 0 {
			cryptoGate = &ratelimit.MinInterval{Interval: time.Duration(cfg.CoinGecko.MinRequestIntervalSec) * time.Second}
		}
	}

	var quoteProviders []domain.QuoteProvider
	var newsProviders []domain.NewsProvider
	if cfg.AlphaVantage.Enabled && cfg.AlphaVantage.APIKey != "" && !offline {
		opts := []alphavantage.Option{alphavantage.WithHTTPClient(hc.HTTP)}
		if cfg.AlphaVantage.Endpoint != "" {
			opts = append(opts, alphavantage.WithBaseURL(cfg.AlphaVantage.Endpoint))
		}
		av := alphavantage.NewClient(cfg.AlphaVantage.APIKey, opts...)
		quoteProviders = append(quoteProviders, av)
		newsProviders = append(newsProviders, av)
	}
	if cfg.GNews.Enabled && cfg.GNews.APIKey != "" && !offline {
		newsProviders = append(newsProviders, gnews.New(gnews.Config{
			BaseURL: cfg.GNews.Endpoint,
			APIKey:  cfg.GNews.APIKey,
			Lang:    cfg.GNews.Lang,
		}, hc))
	}
	if cfg.Finnhub.Enabled && cfg.Finnhub.APIKey != "" && !offline {
		fh := finnhub.New(finnhub.Config{
			BaseURL: cfg.Finnhub.Endpoint,
			APIKey:  cfg.Finnhub.APIKey,
		}, hc)
		quoteProviders = append(quoteProviders, fh)
		newsProviders = append(newsProviders, fh)
	}

	db, err := store.Open(cfg.Store.SQLitePath)
	if err != nil {
		return nil, err
	}

	bus := notify.NewBus()
	session := favorites.StaticSession{UserID: cfg.UserID}
	fav := favorites.NewService(session, db, bus)

	return &App{
		Config:     cfg,
		Cache:      cache,
		Crypto:     fallback.NewCrypto(demo, cryptoProviders...),
		Charts:     fallback.NewChart(demo, chartProviders...),
		Quotes:     fallback.NewQuote(demo, quoteProviders...),
		News:       fallback.NewNews(demo, newsProviders...),
		CryptoGate: cryptoGate,
		Favorites:  fav,
		Prefs:      prefs.Load(cache),
		Bus:        bus,
		db:         db,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}
