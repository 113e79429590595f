package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("NEWS_FEEDS", "")
	t.Setenv("REDDIT_SUBS", "")
	t.Setenv("WEIGHT_SOCIAL", "")
	t.Setenv("BULLISH_THRESHOLD", "")
	t.Setenv("BEARISH_THRESHOLD", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if len(cfg.NewsFeeds) == 0 || len(cfg.RedditSubs) == 0 {
		t.Fatalf("expected default feeds and subs, got %+v", cfg)
	}
	if cfg.WeightSocial != 1.0 || cfg.WeightForum != 1.0 || cfg.WeightNews != 1.0 {
		t.Fatalf("expected neutral default weights, got %+v", cfg)
	}
	if cfg.BearishThreshold != -0.05 || cfg.BullishThreshold != 0.05 {
		t.Fatalf("expected default thresholds, got %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("NEWS_FEEDS", "https://a.example/rss, https://b.example/rss")
	t.Setenv("REDDIT_SUBS", "solana")
	t.Setenv("WEIGHT_NEWS", "2.5")
	t.Setenv("SENTIMENT_POLL_SECS", "300")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.NewsFeeds) != 2 || cfg.NewsFeeds[1] != "https://b.example/rss" {
		t.Fatalf("unexpected news feeds: %v", cfg.NewsFeeds)
	}
	if len(cfg.RedditSubs) != 1 || cfg.RedditSubs[0] != "solana" {
		t.Fatalf("unexpected reddit subs: %v", cfg.RedditSubs)
	}
	if cfg.WeightNews != 2.5 {
		t.Fatalf("expected news weight 2.5, got %f", cfg.WeightNews)
	}
	if cfg.SentimentPollSecs != 300 {
		t.Fatalf("expected poll secs 300, got %d", cfg.SentimentPollSecs)
	}

	t.Setenv("SENTIMENT_POLL_SECS", "bad")
	cfg = Load()
	if cfg.SentimentPollSecs != 900 {
		t.Fatalf("invalid poll secs should fall back to default, got %d", cfg.SentimentPollSecs)
	}
}

func TestLoadInvertedThresholds(t *testing.T) {
	t.Setenv("BEARISH_THRESHOLD", "0.3")
	t.Setenv("BULLISH_THRESHOLD", "-0.3")

	cfg := Load()
	if cfg.BearishThreshold != -0.05 || cfg.BullishThreshold != 0.05 {
		t.Fatalf("inverted thresholds should reset to defaults, got %+v", cfg)
	}
}
