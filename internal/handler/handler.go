package handler

import (
	"context"

	"crypto-pulse/internal/domain"
	"crypto-pulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// SentimentAnalyzer produces a sentiment verdict for one symbol.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, symbol string, refresh bool) (*domain.SentimentVerdict, error)
}

// MarketContext serves display-only market mood data.
type MarketContext interface {
	GetFearGreed(ctx context.Context) (*domain.FearGreedPoint, error)
}

type Handler struct {
	tracer           trace.Tracer
	sentimentService SentimentAnalyzer
	priceService     *service.PriceService
	marketContext    MarketContext
}

func New(tracer trace.Tracer, sentimentService SentimentAnalyzer, priceService *service.PriceService, marketContext MarketContext) *Handler {
	return &Handler{
		tracer:           tracer,
		sentimentService: sentimentService,
		priceService:     priceService,
		marketContext:    marketContext,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/sentiment/:symbol", h.GetSentiment)
	r.GET("/api/prices", h.GetAllPrices)
	r.GET("/api/prices/:symbol", h.GetPrice)
	r.GET("/api/candles/:symbol", h.GetCandles)
	r.GET("/api/feargreed", h.GetFearGreed)
}
