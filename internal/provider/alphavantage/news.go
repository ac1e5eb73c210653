package alphavantage

import (
	"context"
	"strconv"
	"time"

	"marketdash/internal/domain"
	"marketdash/internal/domain/apierr"
)

// topicByCategory maps the app's news categories onto AlphaVantage
// NEWS_SENTIMENT topics.
var topicByCategory = map[string]string{
	"business":   "economy_macro",
	"technology": "technology",
	"crypto":     "blockchain",
	"finance":    "financial_markets",
	"ipo":        "ipo",
}

type feedItem struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	TimePublished string `json:"time_published"`
	Summary       string `json:"summary"`
	BannerImage   string `json:"banner_image"`
	Source        string `json:"source"`
	SourceDomain  string `json:"source_domain"`
}

// FetchNews fetches NEWS_SENTIMENT for the category. AlphaVantage has no
// page parameter, so pagination is a window over the returned feed.
func (c *Client) FetchNews(ctx context.Context, category string, page, pageSize int) (*domain.NewsPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	topic := topicByCategory[category]
	if topic == "" {
		topic = "financial_markets"
	}
	var body struct {
		Feed []feedItem `json:"feed"`
		bodyError
	}
	if err := c.getJSON(ctx, map[string]string{
		"function": "NEWS_SENTIMENT",
		"topics":   topic,
		"limit":    strconv.Itoa(page * pageSize),
		"sort":     "LATEST",
	}, &body); err != nil {
		return nil, err
	}
	if msg := body.errorMessage(); msg != "" {
		return nil, apierr.Application(providerName, msg)
	}
	start := (page - 1) * pageSize
	if start >= len(body.Feed) {
		return &domain.NewsPage{Category: category, Page: page, PageSize: pageSize}, nil
	}
	end := start + pageSize
	if end > len(body.Feed) {
		end = len(body.Feed)
	}
	articles := make([]domain.NewsArticle, 0, end-start)
	for _, f := range body.Feed[start:end] {
		articles = append(articles, domain.NewsArticle{
			Title:       f.Title,
			Description: f.Summary,
			URL:         f.URL,
			Image:       f.BannerImage,
			PublishedAt: parsePublished(f.TimePublished),
			SourceID:    f.SourceDomain,
			SourceName:  f.Source,
		})
	}
	return &domain.NewsPage{Category: category, Page: page, PageSize: pageSize, Articles: articles}, nil
}

// parsePublished parses AlphaVantage's compact 20230410T013000 stamps.
func parsePublished(s string) time.Time {
	t, err := time.Parse("20060102T150405", s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
