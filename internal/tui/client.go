package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"crypto-pulse/internal/domain"
)

// APIClient is a read-only client for the crypto-pulse HTTP API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *APIClient) GetVerdict(ctx context.Context, symbol string, refresh bool) (*domain.SentimentVerdict, error) {
	url := fmt.Sprintf("%s/api/sentiment/%s", c.baseURL, symbol)
	if refresh {
		url += "?refresh=true"
	}
	var verdict domain.SentimentVerdict
	if err := c.getJSON(ctx, url, &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}

func (c *APIClient) GetPrices(ctx context.Context) ([]domain.PriceSnapshot, error) {
	var body struct {
		Prices []domain.PriceSnapshot `json:"prices"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/api/prices", &body); err != nil {
		return nil, err
	}
	return body.Prices, nil
}

func (c *APIClient) GetFearGreed(ctx context.Context) (*domain.FearGreedPoint, error) {
	var point domain.FearGreedPoint
	if err := c.getJSON(ctx, c.baseURL+"/api/feargreed", &point); err != nil {
		return nil, err
	}
	return &point, nil
}

func (c *APIClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
