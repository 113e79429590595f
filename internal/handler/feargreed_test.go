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

func TestGetFearGreedServiceUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	h := &Handler{tracer: tracer}

	router := gin.New()
	router.GET("/api/feargreed", h.GetFearGreed)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/feargreed", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestGetFearGreedSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	h := &Handler{tracer: tracer, marketContext: marketContextStub{
		point: &domain.FearGreedPoint{Value: 54, Classification: "Neutral", Timestamp: time.Now().UTC()},
	}}

	router := gin.New()
	router.GET("/api/feargreed", h.GetFearGreed)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/feargreed", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body domain.FearGreedPoint
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Value != 54 || body.Classification != "Neutral" {
		t.Fatalf("unexpected payload: %+v", body)
	}
}

func TestGetFearGreedFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	h := &Handler{tracer: tracer, marketContext: marketContextStub{err: errors.New("upstream down")}}

	router := gin.New()
	router.GET("/api/feargreed", h.GetFearGreed)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/feargreed", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

type marketContextStub struct {
	point *domain.FearGreedPoint
	err   error
}

func (s marketContextStub) GetFearGreed(ctx context.Context) (*domain.FearGreedPoint, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.point, nil
}
