// Package gnews adapts the GNews v4 top-headlines API.
package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketdash/internal/domain"
	"marketdash/internal/domain/apierr"
	"marketdash/internal/httpx"
)

type Config struct {
	Name    string
	BaseURL string
	APIKey  string
	Lang    string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "GNews"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://gnews.io/api/v4"
	}
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

type article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

func (p *Provider) FetchNews(ctx context.Context, category string, page, pageSize int) (*domain.NewsPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	cat := category
	switch cat {
	case "", "finance", "crypto":
		cat = "business"
	}
	q := url.Values{}
	q.Set("category", cat)
	q.Set("lang", p.cfg.Lang)
	q.Set("max", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	if p.cfg.APIKey != "" {
		q.Set("apikey", p.cfg.APIKey)
	}
	u := p.cfg.BaseURL + "/top-headlines?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, apierr.Application(p.cfg.Name, err.Error())
	}
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, apierr.Network(p.cfg.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// GNews carries the reason in an errors array.
		var e struct {
			Errors []string `json:"errors"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		if json.Unmarshal(b, &e) == nil && len(e.Errors) > 0 {
			return nil, apierr.Application(p.cfg.Name, strings.Join(e.Errors, "; "))
		}
		return nil, apierr.HTTPStatus(p.cfg.Name, resp.StatusCode)
	}
	var body struct {
		Articles []article `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apierr.Application(p.cfg.Name, fmt.Sprintf("decode response: %v", err))
	}
	articles := make([]domain.NewsArticle, 0, len(body.Articles))
	for _, a := range body.Articles {
		articles = append(articles, domain.NewsArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Image:       a.Image,
			PublishedAt: parseTime(a.PublishedAt),
			SourceID:    a.Source.URL,
			SourceName:  a.Source.Name,
		})
	}
	return &domain.NewsPage{Category: category, Page: page, PageSize: pageSize, Articles: articles}, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
