package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"marketdash/internal/app"
	"marketdash/internal/config"
	"marketdash/internal/view"
)

// fetch is a one-shot debugging CLI: run one logical operation through
// the same chains the server uses and print the normalized JSON.
func main() {
	var (
		op         string
		id         string
		symbol     string
		category   string
		page       int
		limit      int
		days       int
		search     string
		sortKey    string
		offline    bool
		configPath string
		timeout    int
	)

	flag.StringVar(&op, "op", "crypto", "operation: crypto | coin | chart | quote | news")
	flag.StringVar(&id, "id", "bitcoin", "asset id for coin/chart ops")
	flag.StringVar(&symbol, "symbol", "AAPL", "equity symbol for quote op")
	flag.StringVar(&category, "category", "business", "news category")
	flag.IntVar(&page, "page", 1, "page number")
	flag.IntVar(&limit, "limit", 10, "page size")
	flag.IntVar(&days, "days", 7, "chart window in days")
	flag.StringVar(&search, "search", "", "filter crypto listing by name/symbol")
	flag.StringVar(&sortKey, "sort", "", "sort crypto listing: price | market_cap | change_pct | volume")
	flag.BoolVar(&offline, "offline", false, "serve the embedded demo dataset only")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.IntVar(&timeout, "timeout", 15, "request timeout seconds")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}

	a, err := app.New(cfg, offline)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	var out any
	switch op {
	case "crypto":
		assets, err := a.Crypto.ListAssets(ctx, page, limit)
		if err != nil {
			log.Fatalf("crypto: %v", err)
		}
		if search != "" || sortKey != "" {
			res := view.Apply(assets, view.Query{
				Search:  search,
				Sort:    view.SortKey(sortKey),
				Desc:    true,
				Page:    1,
				PerPage: limit,
			})
			assets = res.Assets
		}
		out = assets
	case "coin":
		asset, err := a.Crypto.GetAsset(ctx, id)
		if err != nil {
			log.Fatalf("coin: %v", err)
		}
		out = asset
	case "chart":
		series, err := a.Charts.GetChart(ctx, id, days)
		if err != nil {
			log.Fatalf("chart: %v", err)
		}
		out = series
	case "quote":
		q, err := a.Quotes.GetQuote(ctx, symbol)
		if err != nil {
			log.Fatalf("quote: %v", err)
		}
		out = q
	case "news":
		np, err := a.News.FetchNews(ctx, category, page, limit)
		if err != nil {
			log.Fatalf("news: %v", err)
		}
		np.Articles = view.DedupeArticles(np.Articles)
		out = np
	default:
		fmt.Fprintf(os.Stderr, "unknown op %q\n", op)
		flag.Usage()
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
