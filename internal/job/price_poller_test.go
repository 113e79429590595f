package job

import (
	"context"
	"testing"
	"time"

	"crypto-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestNewPricePollerInterval(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	poller := NewPricePoller(tracer, &stubPriceService{}, 2)
	if poller.pollInterval != 2*time.Second {
		t.Fatalf("expected 2s interval, got %v", poller.pollInterval)
	}
}

func TestPricePollerStart(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubPriceService{}
	poller := NewPricePoller(tracer, stub, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	eventually(t, func() bool { return stub.refreshPricesCalls > 0 })
	cancel()
}

func TestFetchCandleBatch(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubPriceService{}
	poller := NewPricePoller(tracer, stub, 1)

	idx := 0
	poller.fetchCandleBatch(context.Background(), &idx, 3)

	if len(stub.candleSymbols) != 3 {
		t.Fatalf("expected 3 symbols, got %d", len(stub.candleSymbols))
	}
	if stub.candleSymbols[0] != domain.SupportedSymbols[0] {
		t.Fatalf("unexpected symbol order: %+v", stub.candleSymbols)
	}
}

func TestFetchCandleBatchWrapsAround(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubPriceService{}
	poller := NewPricePoller(tracer, stub, 1)

	idx := len(domain.SupportedSymbols) - 1
	poller.fetchCandleBatch(context.Background(), &idx, 2)

	if stub.candleSymbols[1] != domain.SupportedSymbols[0] {
		t.Fatalf("expected wrap to first symbol, got %+v", stub.candleSymbols)
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

type stubPriceService struct {
	refreshPricesCalls int
	candleSymbols      []string
}

func (s *stubPriceService) RefreshPrices(ctx context.Context) error {
	s.refreshPricesCalls++
	return nil
}

func (s *stubPriceService) RefreshCandles(ctx context.Context, symbol string) error {
	s.candleSymbols = append(s.candleSymbols, symbol)
	return nil
}
