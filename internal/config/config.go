package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

var defaultNewsFeeds = []string{
	"https://www.coindesk.com/arc/outboundfeeds/rss/",
	"https://cointelegraph.com/rss",
}

var defaultRedditSubs = []string{"CryptoCurrency", "Bitcoin", "ethereum"}

type Config struct {
	RedisURL         string
	TelegramBotToken string

	OpenAIAPIKey     string
	OpenAIModel      string
	CryptoPanicToken string

	NewsFeeds  []string
	RedditSubs []string

	ItemsPerSource   int
	FetchTimeoutSecs int
	ScoringBatchSize int

	BearishThreshold float64
	BullishThreshold float64
	WeightSocial     float64
	WeightForum      float64
	WeightNews       float64

	VerdictCacheSecs  int
	SentimentPollSecs int
	CoinGeckoPollSecs int
}

func Load() *Config {
	cfg := &Config{
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		CryptoPanicToken: os.Getenv("CRYPTOPANIC_TOKEN"),
	}

	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, LLM scoring disabled (lexicon only)")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.NewsFeeds = splitList(os.Getenv("NEWS_FEEDS"), defaultNewsFeeds)
	cfg.RedditSubs = splitList(os.Getenv("REDDIT_SUBS"), defaultRedditSubs)

	cfg.ItemsPerSource = intEnv("ITEMS_PER_SOURCE", 40)
	cfg.FetchTimeoutSecs = intEnv("FETCH_TIMEOUT_SECS", 15)
	cfg.ScoringBatchSize = intEnv("SCORING_BATCH_SIZE", 24)

	cfg.BearishThreshold = floatEnv("BEARISH_THRESHOLD", -0.05)
	cfg.BullishThreshold = floatEnv("BULLISH_THRESHOLD", 0.05)
	if cfg.BearishThreshold > cfg.BullishThreshold {
		log.Printf("Warning: inverted sentiment thresholds (%f > %f), using defaults",
			cfg.BearishThreshold, cfg.BullishThreshold)
		cfg.BearishThreshold = -0.05
		cfg.BullishThreshold = 0.05
	}

	cfg.WeightSocial = weightEnv("WEIGHT_SOCIAL")
	cfg.WeightForum = weightEnv("WEIGHT_FORUM")
	cfg.WeightNews = weightEnv("WEIGHT_NEWS")

	cfg.VerdictCacheSecs = intEnv("VERDICT_CACHE_SECS", 120)
	cfg.SentimentPollSecs = intEnv("SENTIMENT_POLL_SECS", 900)
	cfg.CoinGeckoPollSecs = intEnv("COINGECKO_POLL_SECS", 60)

	return cfg
}

func intEnv(name string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", name, v, fallback)
	}
	return fallback
}

func floatEnv(name string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > -1 && n < 1 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %f", name, v, fallback)
	}
	return fallback
}

// weightEnv parses a non-negative source weight; missing or invalid
// values default to the neutral weight 1.0.
func weightEnv(name string) float64 {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using 1.0", name, v)
	}
	return 1.0
}

func splitList(v string, fallback []string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return append([]string(nil), fallback...)
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
