package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"crypto-pulse/internal/config"
	"crypto-pulse/internal/domain"
	"crypto-pulse/internal/sentiment"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// SocialProvider searches a social feed for recent posts matching a query.
type SocialProvider interface {
	Search(ctx context.Context, query string, limit int) ([]domain.TextItem, error)
}

// ForumProvider searches one forum community for recent threads.
type ForumProvider interface {
	Search(ctx context.Context, subreddit, query string, limit int) ([]domain.TextItem, error)
}

// NewsFeedProvider pulls items from one RSS feed.
type NewsFeedProvider interface {
	FetchFeed(ctx context.Context, feedURL string, maxItems int) ([]domain.TextItem, error)
}

// NewsAPIProvider pulls symbol-filtered headlines from a news aggregator.
type NewsAPIProvider interface {
	FetchPosts(ctx context.Context, symbol string, limit int) ([]domain.TextItem, error)
}

// ItemScorer assigns a polarity in [-1, 1] to each text item.
type ItemScorer interface {
	ScoreItems(ctx context.Context, items []domain.TextItem) []domain.ScoredItem
}

// SentimentService fans a symbol query out to the source adapters, scores
// whatever came back, and folds the scores into one verdict. A source that
// fails or times out contributes zero items; the verdict is still produced.
type SentimentService struct {
	tracer trace.Tracer
	cfg    *config.Config
	social SocialProvider
	forum  ForumProvider
	feeds  NewsFeedProvider
	news   NewsAPIProvider
	scorer ItemScorer
	redis  RedisClient
}

func NewSentimentService(
	tracer trace.Tracer,
	cfg *config.Config,
	social SocialProvider,
	forum ForumProvider,
	feeds NewsFeedProvider,
	news NewsAPIProvider,
	scorer ItemScorer,
	redisClient RedisClient,
) *SentimentService {
	return &SentimentService{
		tracer: tracer,
		cfg:    cfg,
		social: social,
		forum:  forum,
		feeds:  feeds,
		news:   news,
		scorer: scorer,
		redis:  redisClient,
	}
}

// Analyze returns the sentiment verdict for a symbol. Cached verdicts are
// served until they expire unless refresh forces a new collection pass.
func (s *SentimentService) Analyze(ctx context.Context, symbol string, refresh bool) (*domain.SentimentVerdict, error) {
	ctx, span := s.tracer.Start(ctx, "sentiment-service.analyze")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := domain.SymbolAliases[symbol]; !ok {
		return nil, fmt.Errorf("unsupported symbol: %s", symbol)
	}

	if !refresh && s.redis != nil {
		cached, err := s.getVerdictCache(ctx, symbol)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	items := s.collect(ctx, symbol)
	scored := s.scorer.ScoreItems(ctx, flatten(items))

	bySource := make(map[domain.Source][]domain.ScoredItem)
	for _, item := range scored {
		bySource[item.Source] = append(bySource[item.Source], item)
	}

	verdict := sentiment.Aggregate(sentiment.AggregateInput{
		Symbol:    symbol,
		Summaries: sentiment.Summarize(bySource),
		Weights: map[domain.Source]float64{
			domain.SourceSocial: s.cfg.WeightSocial,
			domain.SourceForum:  s.cfg.WeightForum,
			domain.SourceNews:   s.cfg.WeightNews,
		},
		Thresholds: sentiment.Thresholds{
			Bearish: s.cfg.BearishThreshold,
			Bullish: s.cfg.BullishThreshold,
		},
	})

	if s.redis != nil {
		if err := s.setVerdictCache(ctx, &verdict); err != nil {
			log.Printf("redis cache write error for %s: %v", symbol, err)
		}
	}
	return &verdict, nil
}

// collect runs one fetch per source concurrently. Each source gets its own
// timeout so a stalled feed cannot hold up the verdict.
func (s *SentimentService) collect(ctx context.Context, symbol string) map[domain.Source][]domain.TextItem {
	_, span := s.tracer.Start(ctx, "sentiment-service.collect")
	defer span.End()

	query := buildQuery(symbol)
	timeout := time.Duration(s.cfg.FetchTimeoutSecs) * time.Second

	var mu sync.Mutex
	var wg sync.WaitGroup
	items := make(map[domain.Source][]domain.TextItem)

	fetch := func(source domain.Source, fn func(ctx context.Context) ([]domain.TextItem, error)) {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		got, err := fn(fetchCtx)
		if err != nil {
			log.Printf("%s fetch for %s failed: %v", source, symbol, err)
			return
		}
		mu.Lock()
		items[source] = append(items[source], got...)
		mu.Unlock()
	}

	wg.Add(3)
	go fetch(domain.SourceSocial, func(ctx context.Context) ([]domain.TextItem, error) {
		return s.social.Search(ctx, query, s.cfg.ItemsPerSource)
	})
	go fetch(domain.SourceForum, func(ctx context.Context) ([]domain.TextItem, error) {
		return s.collectForum(ctx, query)
	})
	go fetch(domain.SourceNews, func(ctx context.Context) ([]domain.TextItem, error) {
		return s.collectNews(ctx, symbol)
	})
	wg.Wait()

	return items
}

func (s *SentimentService) collectForum(ctx context.Context, query string) ([]domain.TextItem, error) {
	var out []domain.TextItem
	var lastErr error
	perSub := s.cfg.ItemsPerSource / max(len(s.cfg.RedditSubs), 1)
	for _, sub := range s.cfg.RedditSubs {
		got, err := s.forum.Search(ctx, sub, query, max(perSub, 1))
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, got...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (s *SentimentService) collectNews(ctx context.Context, symbol string) ([]domain.TextItem, error) {
	var out []domain.TextItem
	var lastErr error

	for _, feed := range s.cfg.NewsFeeds {
		got, err := s.feeds.FetchFeed(ctx, feed, s.cfg.ItemsPerSource)
		if err != nil {
			lastErr = err
			continue
		}
		// General crypto feeds cover every asset; keep only items that
		// mention the symbol or one of its aliases.
		for _, item := range got {
			if mentionsSymbol(item, symbol) {
				out = append(out, item)
			}
		}
	}

	if s.news != nil {
		got, err := s.news.FetchPosts(ctx, symbol, s.cfg.ItemsPerSource)
		if err != nil {
			lastErr = err
		} else {
			out = append(out, got...)
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

// buildQuery turns a symbol into an alias search expression, e.g.
// "bitcoin OR btc" for BTC.
func buildQuery(symbol string) string {
	aliases := domain.SymbolAliases[symbol]
	if len(aliases) == 0 {
		return strings.ToLower(symbol)
	}
	return strings.Join(aliases, " OR ")
}

func mentionsSymbol(item domain.TextItem, symbol string) bool {
	haystack := strings.ToLower(item.Title + " " + item.Text)
	for _, alias := range domain.SymbolAliases[symbol] {
		if strings.Contains(haystack, strings.ToLower(alias)) {
			return true
		}
	}
	return false
}

func flatten(items map[domain.Source][]domain.TextItem) []domain.TextItem {
	var out []domain.TextItem
	for _, source := range domain.CanonicalSources {
		out = append(out, items[source]...)
	}
	return out
}

func (s *SentimentService) setVerdictCache(ctx context.Context, verdict *domain.SentimentVerdict) error {
	data, err := json.Marshal(verdict)
	if err != nil {
		return err
	}
	ttl := time.Duration(s.cfg.VerdictCacheSecs) * time.Second
	return s.redis.Set(ctx, "verdict:"+verdict.Symbol, data, ttl).Err()
}

func (s *SentimentService) getVerdictCache(ctx context.Context, symbol string) (*domain.SentimentVerdict, error) {
	data, err := s.redis.Get(ctx, "verdict:"+symbol).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var verdict domain.SentimentVerdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}
