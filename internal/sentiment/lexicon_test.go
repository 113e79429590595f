package sentiment

import "testing"

func TestLexiconPolarityDirection(t *testing.T) {
	l := NewLexicon()

	bullish := l.Score("BTC breakout! Huge rally and strong adoption, very bullish")
	if bullish <= 0 {
		t.Fatalf("expected positive score for bullish text, got %f", bullish)
	}

	bearish := l.Score("Exchange hacked, massive selloff and panic, bearish crash incoming")
	if bearish >= 0 {
		t.Fatalf("expected negative score for bearish text, got %f", bearish)
	}
}

func TestLexiconEmptyAndNoSignal(t *testing.T) {
	l := NewLexicon()
	if got := l.Score(""); got != 0 {
		t.Fatalf("empty text should score 0, got %f", got)
	}
	if got := l.Score("the weather in lisbon is mild today"); got != 0 {
		t.Fatalf("signal-free text should score 0, got %f", got)
	}
}

func TestLexiconDeterministic(t *testing.T) {
	l := NewLexicon()
	text := "ETH rally continues despite liquidation fears"
	a := l.Score(text)
	b := l.Score(text)
	if a != b {
		t.Fatalf("score not deterministic: %f vs %f", a, b)
	}
}

func TestLexiconNegationFlips(t *testing.T) {
	l := NewLexicon()
	plain := l.Score("this is bullish")
	negated := l.Score("this is not bullish")
	if plain <= 0 {
		t.Fatalf("expected positive plain score, got %f", plain)
	}
	if negated >= 0 {
		t.Fatalf("expected negation to flip the score, got %f", negated)
	}
}

func TestLexiconScoreInRange(t *testing.T) {
	l := NewLexicon()
	texts := []string{
		"crash crash crash crash crash dump dump scam fraud rekt",
		"moon moon moon rally surge breakout ath gains gains gains",
	}
	for _, text := range texts {
		got := l.Score(text)
		if got < -1 || got > 1 {
			t.Fatalf("score out of range for %q: %f", text, got)
		}
	}
}
