package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crypto-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// Nitter mirrors come and go; the provider walks the list and takes the
// first instance that answers with usable results.
var defaultNitterInstances = []string{
	"nitter.poast.org",
	"nitter.privacydev.net",
	"nitter.net",
	"xcancel.com",
}

// NitterProvider fetches social posts by searching Nitter RSS mirrors.
type NitterProvider struct {
	client    *http.Client
	instances []string
	scheme    string
	tracer    trace.Tracer
}

func NewNitterProvider(tracer trace.Tracer) *NitterProvider {
	return &NitterProvider{
		client:    &http.Client{Timeout: 15 * time.Second},
		instances: defaultNitterInstances,
		scheme:    "https",
		tracer:    tracer,
	}
}

// Search queries each mirror's search RSS until one yields posts.
// Returns an error only when every instance failed or came back empty.
func (p *NitterProvider) Search(ctx context.Context, query string, limit int) ([]domain.TextItem, error) {
	_, span := p.tracer.Start(ctx, "nitter.search")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 {
		limit = 40
	}

	var lastErr error
	for _, instance := range p.instances {
		feedURL := fmt.Sprintf("%s://%s/search/rss?f=tweets&q=%s",
			p.scheme, instance, url.QueryEscape(query+" lang:en"))

		items, err := p.fetchFeed(ctx, feedURL, limit)
		if err != nil {
			lastErr = err
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all nitter instances failed: %w", lastErr)
	}
	return nil, fmt.Errorf("no nitter instance returned posts for %q", query)
}

func (p *NitterProvider) fetchFeed(ctx context.Context, feedURL string, limit int) ([]domain.TextItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("nitter fetch error %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rss struct {
		Channel struct {
			Items []struct {
				Title       string `xml:"title"`
				Link        string `xml:"link"`
				Description string `xml:"description"`
				Creator     string `xml:"creator"`
				PubDate     string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, fmt.Errorf("decode nitter feed: %w", err)
	}

	items := make([]domain.TextItem, 0, min(limit, len(rss.Channel.Items)))
	for i, row := range rss.Channel.Items {
		if i >= limit {
			break
		}
		text := sanitizeText(htmlStrip(row.Description), 420)
		if text == "" {
			text = sanitizeText(htmlStrip(row.Title), 420)
		}
		if text == "" {
			continue
		}
		publishedAt := parseRSSDate(row.PubDate)
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		items = append(items, domain.TextItem{
			Source:      domain.SourceSocial,
			Title:       sanitizeText(htmlStrip(row.Title), 120),
			Text:        text,
			URL:         sanitizeText(row.Link, 500),
			Author:      sanitizeText(row.Creator, 120),
			PublishedAt: publishedAt,
		})
	}

	return items, nil
}
