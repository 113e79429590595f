package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"crypto-pulse/internal/domain"
	"crypto-pulse/internal/service"

	tele "gopkg.in/telebot.v3"
)

// SentimentAnalyzer mirrors the sentiment service surface the bot needs.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, symbol string, refresh bool) (*domain.SentimentVerdict, error)
}

func StartTelegramBot(priceService *service.PriceService, sentimentService SentimentAnalyzer, marketContext *service.MarketContextService) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/price", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /price BTC\nSupported: %s", strings.Join(domain.SupportedSymbols, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		if _, ok := domain.CoinGeckoID[symbol]; !ok {
			return c.Send(fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, strings.Join(domain.SupportedSymbols, ", ")))
		}
		snapshot, err := priceService.GetCurrentPrice(context.Background(), symbol)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching price for %s: %v", symbol, err))
		}
		msg := fmt.Sprintf(
			"%s\nPrice: $%.2f\n24h Change: %.2f%%\n24h Volume: $%.0f",
			symbol, snapshot.PriceUSD, snapshot.Change24hPct, snapshot.Volume24h,
		)
		return c.Send(msg)
	})

	b.Handle("/sentiment", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /sentiment BTC\nSupported: %s", strings.Join(domain.SupportedSymbols, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		if _, ok := domain.SymbolAliases[symbol]; !ok {
			return c.Send(fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, strings.Join(domain.SupportedSymbols, ", ")))
		}
		verdict, err := sentimentService.Analyze(context.Background(), symbol, false)
		if err != nil {
			return c.Send(fmt.Sprintf("Error analyzing %s: %v", symbol, err))
		}
		return c.Send(formatVerdict(verdict))
	})

	b.Handle("/feargreed", func(c tele.Context) error {
		if marketContext == nil {
			return c.Send("Fear & greed index unavailable")
		}
		point, err := marketContext.GetFearGreed(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching fear & greed index: %v", err))
		}
		return c.Send(fmt.Sprintf("Fear & Greed Index: %d (%s)", point.Value, point.Classification))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func formatVerdict(v *domain.SentimentVerdict) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s sentiment: %s (%.3f)\n", v.Symbol, strings.ToUpper(string(v.Label)), v.OverallScore)
	fmt.Fprintf(&sb, "Contributing sources: %d\n", v.ContributingSources)
	for _, s := range v.PerSource {
		if s.ItemCount == 0 {
			fmt.Fprintf(&sb, "%s: no data\n", s.Source)
			continue
		}
		fmt.Fprintf(&sb, "%s: %.3f over %d items\n", s.Source, s.MeanPolarity, s.ItemCount)
	}
	return strings.TrimRight(sb.String(), "\n")
}
