package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentimentIndex(t *testing.T) {
	assert.Equal(t, 0, Positive.Index())
	assert.Equal(t, 1, Negative.Index())
	assert.Equal(t, 2, Neutral.Index())
	assert.Equal(t, -1, Sentiment("Meh").Index())
	assert.Equal(t, Neutral, Sentiment("").OrNeutral())
	assert.Equal(t, Negative, Negative.OrNeutral())
}

func TestLexiconClassify(t *testing.T) {
	l := NewLexicon(nil, DefaultThreshold)

	cases := []struct {
		text string
		want Sentiment
	}{
		{"I love this, it's great", Positive},
		{"this is terrible and I hate it", Negative},
		{"I am fine", Positive},
		{"you are brilliant", Positive},
		{"I'm so excited!!", Positive},
		{"that was a disaster", Negative},
		{"this sucks", Negative},
		{"not good", Negative},
		{"see you at 5", Neutral},
		{"", Neutral},
		{"   ", Neutral},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, l.Classify(c.text), "text %q", c.text)
	}
}

func TestLexiconCompoundScores(t *testing.T) {
	l := NewLexicon(nil, DefaultThreshold)

	// single-word valence v normalises to v/sqrt(v*v+15)
	assert.InDelta(t, 0.2023, l.Score("I am fine"), 1e-3)
	assert.InDelta(t, 0.5859, l.Score("you are brilliant"), 1e-3)
	assert.InDelta(t, -0.6249, l.Score("that was a disaster"), 1e-3)
	assert.InDelta(t, -0.3612, l.Score("this sucks"), 1e-3)
	assert.Zero(t, l.Score("see you at 5"))
}

func TestLexiconDeterministicAndBounded(t *testing.T) {
	l := NewLexicon(nil, DefaultThreshold)
	text := "great great great awesome amazing best love love love 😍😍😍"
	s1, s2 := l.Score(text), l.Score(text)
	assert.Equal(t, s1, s2)
	assert.LessOrEqual(t, s1, 1.0)
	assert.Greater(t, s1, 0.9)
}

func TestLexiconExtraWordsAndThreshold(t *testing.T) {
	assert.Equal(t, Neutral, NewLexicon(nil, DefaultThreshold).Classify("zorp"))
	l := NewLexicon(map[string]float64{"Zorp": 2.5}, DefaultThreshold)
	assert.Equal(t, Positive, l.Classify("zorp"))

	strict := NewLexicon(nil, 0.9)
	assert.Equal(t, Neutral, strict.Classify("I am fine"))

	fallback := NewLexicon(nil, -1)
	assert.Equal(t, Positive, fallback.Classify("I am fine"))
}

func TestMarkerFlirter(t *testing.T) {
	f := NewMarkerFlirter(nil)
	assert.Equal(t, Flirty, f.Classify("Hi Alice 😍"))
	assert.Equal(t, Flirty, f.Classify("lol 🤣"))
	assert.Equal(t, Normal, f.Classify("Hello there"))
	assert.Equal(t, Normal, f.Classify(""))
	assert.Len(t, f.Markers(), len(DefaultFlirtMarkers))

	custom := NewMarkerFlirter([]string{"", "🌹"})
	assert.Equal(t, Flirty, custom.Classify("for you 🌹"))
	assert.Equal(t, Normal, custom.Classify("😍"))
}

func TestFuncAdapters(t *testing.T) {
	var s Sentimenter = SentimentFunc(func(string) Sentiment { return Negative })
	assert.Equal(t, Negative, s.Classify("x"))
	var f Flirter = FlirtFunc(func(string) Flirt { return Flirty })
	assert.Equal(t, Flirty, f.Classify("x"))
}
