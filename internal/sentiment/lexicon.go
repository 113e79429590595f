package sentiment

import (
	"math"
	"strings"
)

// lexicon maps lowercase tokens to a signed valence. Crypto-tilted:
// general sentiment words plus market slang ("moon", "rekt", "hodl").
var lexicon = map[string]float64{
	// bullish
	"bullish": 1.4, "bull": 1.0, "rally": 1.2, "surge": 1.4, "soar": 1.5,
	"moon": 1.6, "mooning": 1.6, "pump": 1.0, "breakout": 1.2, "uptrend": 1.1,
	"gain": 0.9, "gains": 0.9, "profit": 0.8, "growth": 0.8, "adoption": 0.9,
	"buy": 0.7, "buying": 0.7, "accumulate": 0.8, "hodl": 0.6, "recover": 0.9,
	"recovery": 0.9, "strong": 0.7, "upgrade": 1.0, "outperform": 1.1,
	"ath": 1.3, "positive": 0.8, "optimistic": 1.0, "win": 0.8, "good": 0.6,
	"great": 1.0, "beat": 0.8, "beats": 0.8, "record": 0.7, "approval": 0.9,
	"approved": 0.9, "partnership": 0.7, "launch": 0.5, "upside": 0.9,

	// bearish
	"bearish": -1.4, "bear": -1.0, "crash": -1.8, "dump": -1.3, "plunge": -1.6,
	"plummet": -1.7, "collapse": -1.7, "selloff": -1.3, "sell": -0.7,
	"selling": -0.7, "downtrend": -1.1, "loss": -0.9, "losses": -0.9,
	"drop": -0.8, "fall": -0.7, "falls": -0.7, "decline": -0.8, "weak": -0.7,
	"fear": -0.9, "panic": -1.3, "hack": -1.6, "hacked": -1.7, "exploit": -1.4,
	"scam": -1.8, "fraud": -1.8, "rug": -1.6, "rekt": -1.5, "liquidation": -1.2,
	"liquidated": -1.3, "lawsuit": -1.1, "ban": -1.2, "banned": -1.2,
	"crackdown": -1.2, "downgrade": -1.0, "bubble": -0.8, "ponzi": -1.7,
	"negative": -0.8, "bad": -0.6, "worse": -0.9, "worst": -1.2, "dead": -1.1,
	"risk": -0.4, "warning": -0.7, "concern": -0.5, "trouble": -0.8,
	"investigation": -0.8, "default": -1.2, "capitulation": -1.4,
}

// boosters scale the valence of the word that follows them.
var boosters = map[string]float64{
	"very": 0.3, "extremely": 0.4, "massively": 0.4, "hugely": 0.4,
	"really": 0.25, "super": 0.3, "totally": 0.25, "absolutely": 0.3,
	"slightly": -0.3, "somewhat": -0.25, "barely": -0.4, "kinda": -0.3,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "neither": true, "nobody": true,
	"none": true, "nothing": true, "without": true, "isnt": true,
	"wasnt": true, "dont": true, "doesnt": true, "didnt": true,
	"cant": true, "wont": true, "aint": true,
}

const (
	negationScale  = -0.74
	negationWindow = 3
	// normalization constant from VADER: score = s / sqrt(s^2 + alpha)
	normAlpha = 15.0
)

// Lexicon is a deterministic keyword-valence polarity scorer. The same
// text always yields the same score, no network, no state.
type Lexicon struct{}

func NewLexicon() *Lexicon { return &Lexicon{} }

// Score returns a polarity in [-1, 1] for the given text. Empty or
// signal-free text scores exactly 0.
func (l *Lexicon) Score(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	total := 0.0
	for i, token := range tokens {
		valence, ok := lexicon[token]
		if !ok {
			continue
		}
		if i > 0 {
			if boost, ok := boosters[tokens[i-1]]; ok {
				valence += valence * boost
			}
		}
		for back := 1; back <= negationWindow && i-back >= 0; back++ {
			if negators[tokens[i-back]] {
				valence *= negationScale
				break
			}
		}
		total += valence
	}

	if total == 0 {
		return 0
	}
	return total / math.Sqrt(total*total+normAlpha)
}

func tokenize(text string) []string {
	text = strings.ToLower(text)
	// "isn't" should survive as "isnt" so the negator table matches.
	text = strings.ReplaceAll(text, "'", "")
	text = strings.ReplaceAll(text, "’", "")
	fields := strings.FieldsFunc(text, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		}
		return true
	})
	return fields
}
