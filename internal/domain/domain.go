package domain

import "time"

// Source identifies one originating channel of text data.
type Source string

const (
	SourceSocial Source = "social"
	SourceForum  Source = "forum"
	SourceNews   Source = "news"
)

// CanonicalSources fixes the per-source ordering of every verdict,
// regardless of the order sources were collected in.
var CanonicalSources = []Source{SourceSocial, SourceForum, SourceNews}

func (s Source) IsValid() bool {
	switch s {
	case SourceSocial, SourceForum, SourceNews:
		return true
	}
	return false
}

// TextItem is one raw piece of text fetched from a source adapter.
type TextItem struct {
	Source      Source
	Title       string
	Text        string
	URL         string
	Author      string
	PublishedAt time.Time
	Metadata    map[string]any
}

// ScoredItem is a TextItem reduced to its source and polarity.
// Polarity is always in [-1, 1]; the scorer clamps before emitting.
type ScoredItem struct {
	Source   Source  `json:"source"`
	Polarity float64 `json:"polarity"`
}

// SourceSummary is the per-source rollup inside a verdict. ItemCount 0
// means the source returned nothing (or was unavailable) and is a valid
// result, not an error.
type SourceSummary struct {
	Source       Source  `json:"source"`
	MeanPolarity float64 `json:"mean_polarity"`
	ItemCount    int     `json:"item_count"`
}

type SentimentLabel string

const (
	LabelBearish SentimentLabel = "bearish"
	LabelNeutral SentimentLabel = "neutral"
	LabelBullish SentimentLabel = "bullish"
)

// SentimentVerdict is the aggregated sentiment for one symbol and one
// analysis request. Built fresh per request, never mutated after.
type SentimentVerdict struct {
	Symbol              string          `json:"symbol"`
	OverallScore        float64         `json:"overall_score"`
	Label               SentimentLabel  `json:"label"`
	PerSource           []SourceSummary `json:"per_source"`
	ContributingSources int             `json:"contributing_sources"`
	GeneratedAt         time.Time       `json:"generated_at"`
}
