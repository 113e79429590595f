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

const cryptoPanicBaseURL = "https://cryptopanic.com/api/free/v1"

// CryptoPanicProvider fetches crypto news posts from the CryptoPanic
// free API. An auth token widens rate limits but is not required.
type CryptoPanicProvider struct {
	client    *http.Client
	baseURL   string
	authToken string
	tracer    trace.Tracer
}

func NewCryptoPanicProvider(tracer trace.Tracer, authToken string) *CryptoPanicProvider {
	token := strings.TrimSpace(authToken)
	if token == "" {
		token = "free"
	}
	return &CryptoPanicProvider{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   cryptoPanicBaseURL,
		authToken: token,
		tracer:    tracer,
	}
}

// FetchPosts returns rising news posts, filtered server-side by currency
// when the symbol is one CryptoPanic knows about.
func (p *CryptoPanicProvider) FetchPosts(ctx context.Context, symbol string, limit int) ([]domain.TextItem, error) {
	_, span := p.tracer.Start(ctx, "cryptopanic.fetch-posts")
	defer span.End()

	if limit <= 0 {
		limit = 40
	}

	params := url.Values{}
	params.Set("auth_token", p.authToken)
	params.Set("public", "true")
	params.Set("kind", "news")
	params.Set("filter", "rising")

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := domain.CoinGeckoID[symbol]; ok {
		params.Set("currencies", symbol)
	}

	endpoint := strings.TrimRight(p.baseURL, "/") + "/posts/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cryptopanic API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			PublishedAt string `json:"published_at"`
			Source      struct {
				Title  string `json:"title"`
				Domain string `json:"domain"`
			} `json:"source"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode cryptopanic response: %w", err)
	}

	items := make([]domain.TextItem, 0, min(limit, len(payload.Results)))
	for i, row := range payload.Results {
		if i >= limit {
			break
		}
		title := sanitizeText(row.Title, 300)
		if title == "" {
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(row.PublishedAt))
		if err != nil {
			publishedAt = time.Now().UTC()
		}
		items = append(items, domain.TextItem{
			Source:      domain.SourceNews,
			Title:       title,
			Text:        title,
			URL:         sanitizeText(row.URL, 500),
			Author:      sanitizeText(row.Source.Title, 120),
			PublishedAt: publishedAt.UTC(),
			Metadata: map[string]any{
				"domain": strings.TrimSpace(row.Source.Domain),
			},
		})
	}

	return items, nil
}
