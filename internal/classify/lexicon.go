package classify

import (
	"strings"

	"github.com/jonreiter/govader"
)

// DefaultThreshold is the compound score beyond which a message is polar.
const DefaultThreshold = 0.05

// Lexicon labels text with the VADER compound score. It is deterministic
// and safe for concurrent use once built.
type Lexicon struct {
	sia       *govader.SentimentIntensityAnalyzer
	threshold float64
}

// NewLexicon merges extra word valences (VADER scale, -4 to 4) over the
// stock lexicon. A negative threshold falls back to DefaultThreshold.
func NewLexicon(extra map[string]float64, threshold float64) *Lexicon {
	sia := govader.NewSentimentIntensityAnalyzer()
	for w, v := range extra {
		sia.Lexicon[strings.ToLower(w)] = v
	}
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Lexicon{sia: sia, threshold: threshold}
}

// Score returns the normalised compound score in [-1, 1].
func (l *Lexicon) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return l.sia.PolarityScores(text).Compound
}

func (l *Lexicon) Classify(text string) Sentiment {
	s := l.Score(text)
	switch {
	case s > l.threshold:
		return Positive
	case s < -l.threshold:
		return Negative
	default:
		return Neutral
	}
}
