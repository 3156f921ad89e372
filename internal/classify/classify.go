// Package classify holds the per-message labelling capabilities the
// aggregator consumes: sentiment polarity and the emoji "flirt" marker test.
// Both are total functions: any input, including empty text, yields a label.
package classify

type Sentiment string

const (
	Positive Sentiment = "Positive"
	Negative Sentiment = "Negative"
	Neutral  Sentiment = "Neutral"
)

// Sentiments lists every label in cross-tab column order.
var Sentiments = [3]Sentiment{Positive, Negative, Neutral}

// Index returns the column of s in Sentiments, or -1.
func (s Sentiment) Index() int {
	for i, l := range Sentiments {
		if l == s {
			return i
		}
	}
	return -1
}

func (s Sentiment) Valid() bool { return s.Index() >= 0 }

// OrNeutral maps anything outside the three labels to Neutral.
func (s Sentiment) OrNeutral() Sentiment {
	if s.Valid() {
		return s
	}
	return Neutral
}

type Sentimenter interface {
	Classify(text string) Sentiment
}

// SentimentFunc adapts a plain function to Sentimenter.
type SentimentFunc func(text string) Sentiment

func (f SentimentFunc) Classify(text string) Sentiment { return f(text) }

type Flirt string

const (
	Flirty Flirt = "Flirt"
	Normal Flirt = "Normal"
)

type Flirter interface {
	Classify(text string) Flirt
}

// FlirtFunc adapts a plain function to Flirter.
type FlirtFunc func(text string) Flirt

func (f FlirtFunc) Classify(text string) Flirt { return f(text) }
