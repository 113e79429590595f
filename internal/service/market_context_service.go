package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"crypto-pulse/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const fearGreedCacheTTL = 30 * time.Minute

// FearGreedSource fetches the latest fear & greed index reading.
type FearGreedSource interface {
	FetchLatest(ctx context.Context) (*domain.FearGreedPoint, error)
}

// MarketContextService serves market mood context alongside verdicts.
// The index is display-only and never feeds into sentiment aggregation.
type MarketContextService struct {
	tracer    trace.Tracer
	fearGreed FearGreedSource
	redis     RedisClient
}

func NewMarketContextService(tracer trace.Tracer, fearGreed FearGreedSource, redisClient RedisClient) *MarketContextService {
	return &MarketContextService{
		tracer:    tracer,
		fearGreed: fearGreed,
		redis:     redisClient,
	}
}

// GetFearGreed returns the current index reading, cached for half an hour.
func (s *MarketContextService) GetFearGreed(ctx context.Context) (*domain.FearGreedPoint, error) {
	_, span := s.tracer.Start(ctx, "market-context-service.get-fear-greed")
	defer span.End()

	if s.redis != nil {
		data, err := s.redis.Get(ctx, "feargreed").Bytes()
		if err == nil {
			var point domain.FearGreedPoint
			if err := json.Unmarshal(data, &point); err == nil {
				return &point, nil
			}
		} else if err != redis.Nil {
			log.Printf("redis cache read error: %v", err)
		}
	}

	point, err := s.fearGreed.FetchLatest(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(point); err == nil {
			if err := s.redis.Set(ctx, "feargreed", data, fearGreedCacheTTL).Err(); err != nil {
				log.Printf("redis cache write error: %v", err)
			}
		}
	}
	return point, nil
}
