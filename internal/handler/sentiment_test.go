package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto-pulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

func newSentimentRouter(stub *sentimentStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	h := &Handler{tracer: tracer, sentimentService: stub}

	router := gin.New()
	router.GET("/api/sentiment/:symbol", h.GetSentiment)
	return router
}

func TestGetSentimentSuccess(t *testing.T) {
	verdict := &domain.SentimentVerdict{
		Symbol:       "BTC",
		OverallScore: 0.15,
		Label:        domain.LabelBullish,
		PerSource: []domain.SourceSummary{
			{Source: domain.SourceSocial, MeanPolarity: 0.5, ItemCount: 10},
			{Source: domain.SourceForum, MeanPolarity: -0.2, ItemCount: 5},
			{Source: domain.SourceNews, MeanPolarity: 0, ItemCount: 0},
		},
		ContributingSources: 2,
		GeneratedAt:         time.Now().UTC(),
	}
	stub := &sentimentStub{verdict: verdict}
	router := newSentimentRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sentiment/btc", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if stub.lastSymbol != "BTC" {
		t.Fatalf("expected uppercased symbol, got %q", stub.lastSymbol)
	}
	if stub.lastRefresh {
		t.Fatal("refresh should default to false")
	}

	var body domain.SentimentVerdict
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Label != domain.LabelBullish || body.ContributingSources != 2 {
		t.Fatalf("unexpected payload: %+v", body)
	}
	if len(body.PerSource) != 3 || body.PerSource[0].Source != domain.SourceSocial {
		t.Fatalf("unexpected per-source payload: %+v", body.PerSource)
	}
}

func TestGetSentimentRefreshFlag(t *testing.T) {
	stub := &sentimentStub{verdict: &domain.SentimentVerdict{Symbol: "ETH"}}
	router := newSentimentRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sentiment/ETH?refresh=true", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !stub.lastRefresh {
		t.Fatal("expected refresh to be forwarded")
	}
}

func TestGetSentimentUnsupportedSymbol(t *testing.T) {
	stub := &sentimentStub{}
	router := newSentimentRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sentiment/DOESNOTEXIST", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if stub.calls != 0 {
		t.Fatal("service should not be called for unsupported symbols")
	}
}

func TestGetSentimentServiceError(t *testing.T) {
	stub := &sentimentStub{err: errors.New("collection failed")}
	router := newSentimentRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sentiment/BTC", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

type sentimentStub struct {
	verdict *domain.SentimentVerdict
	err     error

	calls       int
	lastSymbol  string
	lastRefresh bool
}

func (s *sentimentStub) Analyze(ctx context.Context, symbol string, refresh bool) (*domain.SentimentVerdict, error) {
	s.calls++
	s.lastSymbol = symbol
	s.lastRefresh = refresh
	if s.err != nil {
		return nil, s.err
	}
	return s.verdict, nil
}
