package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"crypto-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestCryptoPanicFetchPosts(t *testing.T) {
	p := NewCryptoPanicProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("currencies") != "BTC" {
			t.Fatalf("expected currency filter for BTC, got %q", q.Get("currencies"))
		}
		if q.Get("auth_token") != "free" {
			t.Fatalf("expected free auth token default, got %q", q.Get("auth_token"))
		}
		body := `{"results":[{"title":"Bitcoin ETF inflows hit record","url":"https://cp.example/1","published_at":"2026-02-13T10:00:00Z","source":{"title":"CoinDesk","domain":"coindesk.com"}}]}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     make(http.Header),
		}, nil
	})}

	items, err := p.FetchPosts(context.Background(), "BTC", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Source != domain.SourceNews {
		t.Fatalf("expected news source, got %s", items[0].Source)
	}
	if items[0].Author != "CoinDesk" {
		t.Fatalf("unexpected author: %q", items[0].Author)
	}
}

func TestCryptoPanicUnknownSymbolSkipsCurrencyFilter(t *testing.T) {
	p := NewCryptoPanicProvider(trace.NewNoopTracerProvider().Tracer("test"), "token123")
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Has("currencies") {
			t.Fatalf("unexpected currency filter: %q", q.Get("currencies"))
		}
		if q.Get("auth_token") != "token123" {
			t.Fatalf("expected configured token, got %q", q.Get("auth_token"))
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(`{"results":[]}`)),
			Header:     make(http.Header),
		}, nil
	})}

	items, err := p.FetchPosts(context.Background(), "NOPE", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestCryptoPanicAPIError(t *testing.T) {
	p := NewCryptoPanicProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(bytes.NewBufferString("down")),
			Header:     make(http.Header),
		}, nil
	})}

	if _, err := p.FetchPosts(context.Background(), "BTC", 10); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}
