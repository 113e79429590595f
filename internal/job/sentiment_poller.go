package job

import (
	"context"
	"log"
	"time"

	"crypto-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// VerdictRefresher produces a fresh sentiment verdict for one symbol.
type VerdictRefresher interface {
	Analyze(ctx context.Context, symbol string, refresh bool) (*domain.SentimentVerdict, error)
}

// SentimentPoller keeps warm verdicts in the cache so interactive requests
// rarely pay the full collection cost. One symbol is refreshed per tick,
// round-robin, to stay inside the upstream rate limits.
type SentimentPoller struct {
	tracer       trace.Tracer
	service      VerdictRefresher
	pollInterval time.Duration
	symbols      []string
}

func NewSentimentPoller(tracer trace.Tracer, service VerdictRefresher, pollIntervalSecs int) *SentimentPoller {
	interval := time.Duration(pollIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &SentimentPoller{
		tracer:       tracer,
		service:      service,
		pollInterval: interval,
		symbols:      domain.SupportedSymbols,
	}
}

// Start blocks until ctx is cancelled.
func (p *SentimentPoller) Start(ctx context.Context) {
	if p.service == nil {
		log.Println("Sentiment poller disabled: no service")
		<-ctx.Done()
		return
	}

	log.Println("Sentiment poller starting...")

	symbolIndex := 0
	p.refreshNext(ctx, &symbolIndex)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sentiment poller stopped")
			return
		case <-ticker.C:
			p.refreshNext(ctx, &symbolIndex)
		}
	}
}

func (p *SentimentPoller) refreshNext(ctx context.Context, symbolIndex *int) {
	_, span := p.tracer.Start(ctx, "sentiment-poller.refresh-next")
	defer span.End()

	symbol := p.symbols[*symbolIndex%len(p.symbols)]
	*symbolIndex++

	verdict, err := p.service.Analyze(ctx, symbol, true)
	if err != nil {
		log.Printf("sentiment refresh error for %s: %v", symbol, err)
		return
	}
	log.Printf("Refreshed sentiment for %s: %s (%.3f from %d sources)",
		symbol, verdict.Label, verdict.OverallScore, verdict.ContributingSources)
}
