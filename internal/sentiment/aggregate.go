package sentiment

import (
	"math"
	"sort"
	"time"

	"crypto-pulse/internal/domain"
)

// Default label thresholds. Scores at or below Bearish label bearish,
// at or above Bullish label bullish, everything between is neutral.
const (
	DefaultBearishThreshold = -0.05
	DefaultBullishThreshold = 0.05
)

type Thresholds struct {
	Bearish float64
	Bullish float64
}

func (t Thresholds) normalized() Thresholds {
	if t.Bearish == 0 && t.Bullish == 0 {
		return Thresholds{Bearish: DefaultBearishThreshold, Bullish: DefaultBullishThreshold}
	}
	if t.Bearish > t.Bullish {
		t.Bearish, t.Bullish = t.Bullish, t.Bearish
	}
	return t
}

type AggregateInput struct {
	Symbol     string
	Summaries  []domain.SourceSummary
	Weights    map[domain.Source]float64
	Thresholds Thresholds
	Now        time.Time
}

// Summarize rolls per-source score collections up into one SourceSummary
// per canonical source. A source with no items yields an explicit
// {mean 0, count 0} summary rather than being dropped. Polarities are
// clamped before averaging in case a scorer violated its contract.
func Summarize(items map[domain.Source][]domain.ScoredItem) []domain.SourceSummary {
	out := make([]domain.SourceSummary, 0, len(domain.CanonicalSources))
	for _, source := range domain.CanonicalSources {
		scored := items[source]
		if len(scored) == 0 {
			out = append(out, domain.SourceSummary{Source: source, MeanPolarity: 0, ItemCount: 0})
			continue
		}
		sum := 0.0
		for _, item := range scored {
			sum += clamp(item.Polarity, -1, 1)
		}
		out = append(out, domain.SourceSummary{
			Source:       source,
			MeanPolarity: sum / float64(len(scored)),
			ItemCount:    len(scored),
		})
	}
	return out
}

// Aggregate combines per-source summaries into one verdict. Only sources
// with at least one item contribute; empty sources enter neither the
// numerator nor the denominator, so they can never drag the score toward
// zero. A missing weight counts as 1.0 and a negative one as 0. With no
// contributing sources at all the verdict is score 0, label neutral,
// which is the defined empty-input result and not an error. Pure, no
// side effects.
func Aggregate(in AggregateInput) domain.SentimentVerdict {
	thresholds := in.Thresholds.normalized()

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	perSource := make([]domain.SourceSummary, len(in.Summaries))
	copy(perSource, in.Summaries)
	sort.SliceStable(perSource, func(i, j int) bool {
		return sourceRank(perSource[i].Source) < sourceRank(perSource[j].Source)
	})

	contributing := 0
	weightedSum := 0.0
	weightTotal := 0.0
	plainSum := 0.0
	for _, summary := range perSource {
		if summary.ItemCount <= 0 {
			continue
		}
		contributing++
		weight := 1.0
		if w, ok := in.Weights[summary.Source]; ok {
			weight = math.Max(w, 0)
		}
		mean := clamp(summary.MeanPolarity, -1, 1)
		weightedSum += weight * mean
		weightTotal += weight
		plainSum += mean
	}

	score := 0.0
	if contributing > 0 {
		if weightTotal > 0 {
			score = weightedSum / weightTotal
		} else {
			// All contributing weights zeroed out: fall back to the
			// unweighted mean rather than fabricating a neutral score.
			score = plainSum / float64(contributing)
		}
		score = clamp(score, -1, 1)
	}

	label := domain.LabelNeutral
	switch {
	case contributing == 0:
		label = domain.LabelNeutral
	case score <= thresholds.Bearish:
		label = domain.LabelBearish
	case score >= thresholds.Bullish:
		label = domain.LabelBullish
	}

	return domain.SentimentVerdict{
		Symbol:              in.Symbol,
		OverallScore:        score,
		Label:               label,
		PerSource:           perSource,
		ContributingSources: contributing,
		GeneratedAt:         now.UTC(),
	}
}

func sourceRank(s domain.Source) int {
	for i, canonical := range domain.CanonicalSources {
		if s == canonical {
			return i
		}
	}
	return len(domain.CanonicalSources)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
