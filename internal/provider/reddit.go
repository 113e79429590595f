package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crypto-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	redditBaseURL     = "https://www.reddit.com"
	defaultRedditUA   = "crypto-pulse/1.0 (sentiment dashboard)"
	defaultRedditSize = 40
)

// RedditProvider fetches forum posts from the public reddit JSON API.
type RedditProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
}

func NewRedditProvider(tracer trace.Tracer) *RedditProvider {
	return &RedditProvider{
		client:    &http.Client{Timeout: 20 * time.Second},
		baseURL:   redditBaseURL,
		userAgent: defaultRedditUA,
		tracer:    tracer,
	}
}

// Search looks for posts matching query in a subreddit. When the search
// comes back empty it falls back to the subreddit's hot listing, which
// is what the sentiment pipeline wants anyway: recent chatter beats no
// data.
func (p *RedditProvider) Search(ctx context.Context, subreddit, query string, limit int) ([]domain.TextItem, error) {
	_, span := p.tracer.Start(ctx, "reddit.search")
	defer span.End()

	subreddit = strings.TrimSpace(subreddit)
	if subreddit == "" {
		return nil, fmt.Errorf("subreddit is required")
	}
	if limit <= 0 {
		limit = defaultRedditSize
	}
	if limit > 100 {
		limit = 100
	}

	base := strings.TrimRight(p.baseURL, "/")

	items, err := p.fetchListing(ctx, fmt.Sprintf(
		"%s/r/%s/search.json?q=%s&restrict_sr=1&sort=new&limit=%d",
		base, url.PathEscape(subreddit), url.QueryEscape(query), limit,
	), base)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	return p.fetchListing(ctx, fmt.Sprintf(
		"%s/r/%s/hot.json?limit=%d",
		base, url.PathEscape(subreddit), limit,
	), base)
}

func (p *RedditProvider) fetchListing(ctx context.Context, listingURL, base string) ([]domain.TextItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reddit API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			Children []struct {
				Data struct {
					ID          string  `json:"id"`
					Subreddit   string  `json:"subreddit"`
					Title       string  `json:"title"`
					SelfText    string  `json:"selftext"`
					Author      string  `json:"author"`
					CreatedUTC  float64 `json:"created_utc"`
					Permalink   string  `json:"permalink"`
					URL         string  `json:"url"`
					Score       float64 `json:"score"`
					NumComments float64 `json:"num_comments"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}

	items := make([]domain.TextItem, 0, len(payload.Data.Children))
	for _, row := range payload.Data.Children {
		data := row.Data
		if strings.TrimSpace(data.ID) == "" || strings.TrimSpace(data.Title) == "" {
			continue
		}
		publishedAt := time.Unix(int64(data.CreatedUTC), 0).UTC()
		permalink := strings.TrimSpace(data.Permalink)
		itemURL := strings.TrimSpace(data.URL)
		if permalink != "" {
			itemURL = base + permalink
		}
		items = append(items, domain.TextItem{
			Source:      domain.SourceForum,
			Title:       sanitizeText(data.Title, 300),
			Text:        sanitizeText(data.SelfText, 420),
			URL:         itemURL,
			Author:      sanitizeText(data.Author, 120),
			PublishedAt: publishedAt,
			Metadata: map[string]any{
				"subreddit":    strings.TrimSpace(data.Subreddit),
				"score":        data.Score,
				"num_comments": data.NumComments,
			},
		})
	}

	return items, nil
}
