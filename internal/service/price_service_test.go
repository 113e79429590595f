package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"crypto-pulse/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func TestPriceService_GetCurrentPriceCacheHit(t *testing.T) {
	t.Parallel()

	redis := newFakeRedis()
	snap := &domain.PriceSnapshot{Symbol: "BTC", PriceUSD: 123.45}
	data, _ := json.Marshal(snap)
	_ = redis.Set(context.Background(), "price:BTC", data, 0)

	svc := NewPriceService(testTracer, &mockProvider{}, redis)

	got, err := svc.GetCurrentPrice(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PriceUSD != snap.PriceUSD {
		t.Fatalf("expected %.2f, got %.2f", snap.PriceUSD, got.PriceUSD)
	}
}

func TestPriceService_GetCurrentPriceFetchesOnMiss(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		prices: map[string]*domain.PriceSnapshot{
			"BTC": {Symbol: "BTC", PriceUSD: 42},
		},
	}
	redis := newFakeRedis()
	svc := NewPriceService(testTracer, provider, redis)

	got, err := svc.GetCurrentPrice(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Symbol != "BTC" || got.PriceUSD != 42 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if provider.fetchPricesCalls != 1 {
		t.Fatalf("expected FetchPrices to be called once, got %d", provider.fetchPricesCalls)
	}
	if _, ok := redis.data["price:BTC"]; !ok {
		t.Fatalf("price not cached")
	}
}

func TestPriceService_GetCurrentPriceUnsupported(t *testing.T) {
	t.Parallel()

	svc := NewPriceService(testTracer, &mockProvider{}, nil)
	if _, err := svc.GetCurrentPrice(context.Background(), "FAKE"); err == nil {
		t.Fatal("expected error for unsupported symbol")
	}
}

func TestPriceService_GetCurrentPricesUsesCache(t *testing.T) {
	t.Parallel()

	redis := newFakeRedis()
	cached := &domain.PriceSnapshot{Symbol: "BTC", PriceUSD: 1}
	data, _ := json.Marshal(cached)
	_ = redis.Set(context.Background(), "price:BTC", data, 0)

	prices := make(map[string]*domain.PriceSnapshot)
	for _, symbol := range domain.SupportedSymbols {
		if symbol == "BTC" {
			continue
		}
		prices[symbol] = &domain.PriceSnapshot{Symbol: symbol, PriceUSD: float64(len(symbol))}
	}

	provider := &mockProvider{prices: prices}
	svc := NewPriceService(testTracer, provider, redis)

	snapshots, err := svc.GetCurrentPrices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.fetchPricesCalls != 1 {
		t.Fatalf("expected fetch once, got %d", provider.fetchPricesCalls)
	}
	if len(snapshots) != len(domain.SupportedSymbols) {
		t.Fatalf("expected %d snapshots, got %d", len(domain.SupportedSymbols), len(snapshots))
	}
}

func TestPriceService_RefreshPricesCachesAll(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		prices: map[string]*domain.PriceSnapshot{
			"BTC": {Symbol: "BTC", PriceUSD: 10},
			"ETH": {Symbol: "ETH", PriceUSD: 20},
		},
	}
	redis := newFakeRedis()
	svc := NewPriceService(testTracer, provider, redis)

	if err := svc.RefreshPrices(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.fetchPricesCalls != 1 {
		t.Fatalf("expected fetch once, got %d", provider.fetchPricesCalls)
	}
	if len(redis.data) != 2 {
		t.Fatalf("expected cached entries, got %d", len(redis.data))
	}
}

func TestPriceService_RefreshCandlesCachesEveryInterval(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		marketByDays: map[int][]*domain.Candle{
			1: {
				{Symbol: "BTC", Interval: "5m"},
				{Symbol: "BTC", Interval: "1h"},
			},
			30: {
				{Symbol: "BTC", Interval: "1d"},
			},
		},
	}
	redis := newFakeRedis()
	svc := NewPriceService(testTracer, provider, redis)

	if err := svc.RefreshCandles(context.Background(), "BTC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.marketCalls != 2 {
		t.Fatalf("expected two market chart calls, got %d", provider.marketCalls)
	}
	for _, key := range []string{"candles:BTC:5m", "candles:BTC:1h", "candles:BTC:1d"} {
		if _, ok := redis.data[key]; !ok {
			t.Fatalf("missing cache entry %s", key)
		}
	}
}

func TestPriceService_GetCandlesCacheHitRespectsLimit(t *testing.T) {
	t.Parallel()

	redis := newFakeRedis()
	candles := []*domain.Candle{
		{Symbol: "BTC", Interval: "1h", Close: 1},
		{Symbol: "BTC", Interval: "1h", Close: 2},
		{Symbol: "BTC", Interval: "1h", Close: 3},
	}
	data, _ := json.Marshal(candles)
	_ = redis.Set(context.Background(), "candles:BTC:1h", data, 0)

	provider := &mockProvider{}
	svc := NewPriceService(testTracer, provider, redis)

	got, err := svc.GetCandles(context.Background(), "BTC", "1h", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.marketCalls != 0 {
		t.Fatalf("expected no market chart calls, got %d", provider.marketCalls)
	}
	if len(got) != 2 || got[0].Close != 2 || got[1].Close != 3 {
		t.Fatalf("unexpected candles: %+v", got)
	}
}

func TestPriceService_GetCandlesFetchesOnMiss(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		marketByDays: map[int][]*domain.Candle{
			1:  {{Symbol: "BTC", Interval: "1h", Close: 5}},
			30: {{Symbol: "BTC", Interval: "1d", Close: 6}},
		},
	}
	redis := newFakeRedis()
	svc := NewPriceService(testTracer, provider, redis)

	got, err := svc.GetCandles(context.Background(), "BTC", "1h", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.marketCalls != 2 {
		t.Fatalf("expected refresh to hit the provider, got %d calls", provider.marketCalls)
	}
	if len(got) != 1 || got[0].Close != 5 {
		t.Fatalf("unexpected candles: %+v", got)
	}
}

type mockProvider struct {
	prices       map[string]*domain.PriceSnapshot
	marketByDays map[int][]*domain.Candle
	priceErr     error
	marketErr    error

	fetchPricesCalls    int
	marketCalls         int
	lastMarketSymbol    string
	lastMarketIntervals []string
}

func (m *mockProvider) FetchPrices(ctx context.Context) (map[string]*domain.PriceSnapshot, error) {
	m.fetchPricesCalls++
	if m.priceErr != nil {
		return nil, m.priceErr
	}
	return m.prices, nil
}

func (m *mockProvider) FetchMarketChart(ctx context.Context, symbol string, days int, intervals []string) ([]*domain.Candle, error) {
	m.marketCalls++
	m.lastMarketSymbol = symbol
	m.lastMarketIntervals = append([]string(nil), intervals...)
	if m.marketErr != nil {
		return nil, m.marketErr
	}
	return m.marketByDays[days], nil
}

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}
