package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-pulse/internal/bot"
	"crypto-pulse/internal/cache"
	"crypto-pulse/internal/config"
	"crypto-pulse/internal/handler"
	"crypto-pulse/internal/job"
	"crypto-pulse/internal/provider"
	"crypto-pulse/internal/sentiment"
	"crypto-pulse/internal/service"
	"crypto-pulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "crypto-pulse/docs"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newCoinGeckoProviderFunc = func(tracer trace.Tracer) service.PriceProvider {
		return provider.NewCoinGeckoProvider(tracer)
	}
	newPriceServiceFunc      = service.NewPriceService
	newSentimentServiceFunc  = service.NewSentimentService
	newPricePollerFunc       = job.NewPricePoller
	newSentimentPollerFunc   = job.NewSentimentPoller
	startPricePollerFunc     = func(p *job.PricePoller, ctx context.Context) { go p.Start(ctx) }
	startSentimentPollerFunc = func(p *job.SentimentPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc     = bot.StartTelegramBot
	newHandlerFunc           = handler.New
	newRouterFunc            = gin.Default
	setupSignalNotify        = signal.Notify
	waitForSignalFunc        = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc      = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc   = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Crypto Pulse API
// @version         1.0
// @description     Aggregated crypto sentiment from social, forum, and news sources.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Redis
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Source adapters
	nitter := provider.NewNitterProvider(tracer)
	reddit := provider.NewRedditProvider(tracer)
	rss := provider.NewRSSProvider(tracer)
	cryptoPanic := provider.NewCryptoPanicProvider(tracer, cfg.CryptoPanicToken)
	fearGreed := provider.NewFearGreedProvider(tracer)
	cgProvider := newCoinGeckoProviderFunc(tracer)

	// Scoring: lexicon baseline with optional LLM overlay
	llm := sentiment.NewOpenAIScorer(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	scorer := sentiment.NewScorer(llm, cfg.ScoringBatchSize)

	// Services
	priceService := newPriceServiceFunc(tracer, cgProvider, cache.Client)
	sentimentService := newSentimentServiceFunc(tracer, cfg, nitter, reddit, rss, cryptoPanic, scorer, cache.Client)
	marketContext := service.NewMarketContextService(tracer, fearGreed, cache.Client)

	// Background pollers (stopped by ctx cancel)
	pricePoller := newPricePollerFunc(tracer, priceService, cfg.CoinGeckoPollSecs)
	startPricePollerFunc(pricePoller, ctx)
	sentimentPoller := newSentimentPollerFunc(tracer, sentimentService, cfg.SentimentPollSecs)
	startSentimentPollerFunc(sentimentPoller, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(priceService, sentimentService, marketContext)

	// Create handlers and routes
	h := newHandlerFunc(tracer, sentimentService, priceService, marketContext)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-pulse"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
