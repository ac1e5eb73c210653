package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Cache struct {
	// Path of the persistent cache file. Empty means in-memory only.
	Path string `json:"path"`
}

type Store struct {
	SQLitePath string `json:"sqlite_path"`
}

type CoinGecko struct {
	Enabled               bool   `json:"enabled"`
	APIKey                string `json:"api_key"`
	Endpoint              string `json:"endpoint"`
	Currency              string `json:"currency"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	Burst                 int    `json:"burst"`
}

type AlphaVantage struct {
	Enabled  bool   `json:"enabled"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
}

type Finnhub struct {
	Enabled  bool   `json:"enabled"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
}

type GNews struct {
	Enabled  bool   `json:"enabled"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
	Lang     string `json:"lang"`
}

type Config struct {
	Server       Server       `json:"server"`
	Cache        Cache        `json:"cache"`
	Store        Store        `json:"store"`
	UserID       string       `json:"user_id"`
	CoinGecko    CoinGecko    `json:"coingecko"`
	AlphaVantage AlphaVantage `json:"alphavantage"`
	Finnhub      Finnhub      `json:"finnhub"`
	GNews        GNews        `json:"gnews"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Cache:  Cache{Path: "data/cache.json"},
		Store:  Store{SQLitePath: "data/marketdash.db"},
		CoinGecko: CoinGecko{
			Enabled:              true,
			Currency:             "usd",
			MaxRequestsPerMinute: 30,
			Burst:                5,
		},
		AlphaVantage: AlphaVantage{Enabled: true},
		Finnhub:      Finnhub{Enabled: true},
		GNews:        GNews{Enabled: true, Lang: "en"},
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override select fields
// for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("USER_ID"); v != "" {
		cfg.UserID = v
	}

	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.CoinGecko.APIKey = v
	}
	if v := os.Getenv("COINGECKO_ENDPOINT"); v != "" {
		cfg.CoinGecko.Endpoint = v
	}
	if v := os.Getenv("COINGECKO_CURRENCY"); v != "" {
		cfg.CoinGecko.Currency = v
	}
	if v := os.Getenv("COINGECKO_MAX_RPM"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.CoinGecko.MaxRequestsPerMinute = x
		}
	}
	if v := os.Getenv("COINGECKO_MIN_INTERVAL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.CoinGecko.MinRequestIntervalSec = x
		}
	}
	if v := os.Getenv("COINGECKO_BURST"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.CoinGecko.Burst = x
		}
	}
	if v := os.Getenv("COINGECKO_ENABLED"); v != "" {
		cfg.CoinGecko.Enabled = parseBool(v, cfg.CoinGecko.Enabled)
	}

	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_ENDPOINT"); v != "" {
		cfg.AlphaVantage.Endpoint = v
	}
	if v := os.Getenv("ALPHAVANTAGE_ENABLED"); v != "" {
		cfg.AlphaVantage.Enabled = parseBool(v, cfg.AlphaVantage.Enabled)
	}

	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Finnhub.APIKey = v
	}
	if v := os.Getenv("FINNHUB_ENDPOINT"); v != "" {
		cfg.Finnhub.Endpoint = v
	}
	if v := os.Getenv("FINNHUB_ENABLED"); v != "" {
		cfg.Finnhub.Enabled = parseBool(v, cfg.Finnhub.Enabled)
	}

	if v := os.Getenv("GNEWS_API_KEY"); v != "" {
		cfg.GNews.APIKey = v
	}
	if v := os.Getenv("GNEWS_ENDPOINT"); v != "" {
		cfg.GNews.Endpoint = v
	}
	if v := os.Getenv("GNEWS_LANG"); v != "" {
		cfg.GNews.Lang = v
	}
	if v := os.Getenv("GNEWS_ENABLED"); v != "" {
		cfg.GNews.Enabled = parseBool(v, cfg.GNews.Enabled)
	}
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	}
	return def
}
