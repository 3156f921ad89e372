package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLineRejectsWithoutTimestampSeparator(t *testing.T) {
	for _, raw := range []string{
		"12/05/23, Alice added Bob",
		"Messages and calls are end-to-end encrypted.",
		"just a continuation line",
		"Alice: hello",
		"12/05/23, 10:30 AM -Alice: tight dash",
	} {
		_, _, _, reject := SplitLine(raw)
		assert.Equal(t, RejectNoTimestamp, reject, "line %q", raw)
	}
}

func TestSplitLineRejectReasons(t *testing.T) {
	cases := map[string]Reject{
		"":                                        RejectBlank,
		"   \t ":                                  RejectBlank,
		"12/05/23, 10:30 AM - Alice added Bob":    RejectNoSender,
		"12/05/23, 10:30 AM - : orphan message":   RejectEmptySender,
		"12/05/23, 10:30 AM - \u200e: marks only": RejectEmptySender,
		"12/05/23, 10:30 AM - Alice: ":            RejectEmptyMessage,
		"12/05/23, 10:30 AM - Alice:    ":         RejectEmptyMessage,
	}
	for raw, want := range cases {
		_, _, _, got := SplitLine(raw)
		assert.Equal(t, want, got, "line %q", raw)
	}
}

func TestSplitLineExtractsFields(t *testing.T) {
	cases := []struct {
		raw, ts, sender, msg string
	}{
		{"12/05/23, 10:30 AM - Alice: Hello there", "12/05/23, 10:30 AM", "Alice", "Hello there"},
		{"12/05/23, 10:31 AM - Bob: Hi Alice 😍", "12/05/23, 10:31 AM", "Bob", "Hi Alice 😍"},
		{"1/2/2024, 21:05 - +44 7700 900123: ok\r\n", "1/2/2024, 21:05", "+44 7700 900123", "ok"},
		{"12/05/23, 10:30 - \u200eAlice: hi", "12/05/23, 10:30", "Alice", "hi"},
		{"1/2/2024, 21:05 - \u202a+44 7700 900123\u202c: ok", "1/2/2024, 21:05", "+44 7700 900123", "ok"},
	}
	for _, c := range cases {
		ts, sender, msg, reject := SplitLine(c.raw)
		require.Equal(t, Accepted, reject, "line %q", c.raw)
		assert.Equal(t, c.ts, ts)
		assert.Equal(t, c.sender, sender)
		assert.Equal(t, c.msg, msg)
	}
}

func TestSplitLineOnlyFirstSeparatorsCount(t *testing.T) {
	ts, sender, msg, reject := SplitLine("12/05/23, 10:30 AM - Alice: note: meet at 5 - 6 pm")
	require.Equal(t, Accepted, reject)
	assert.Equal(t, "12/05/23, 10:30 AM", ts)
	assert.Equal(t, "Alice", sender)
	assert.Equal(t, "note: meet at 5 - 6 pm", msg)

	// a sender name containing ": " is split at the wrong place; accepted limitation
	_, sender, msg, reject = SplitLine("12/05/23, 10:30 AM - Team: Ops: deploy done")
	require.Equal(t, Accepted, reject)
	assert.Equal(t, "Team", sender)
	assert.Equal(t, "Ops: deploy done", msg)
}

func TestParseLine(t *testing.T) {
	p := NewParser(Options{DayFirst: true})

	rec, reject := p.ParseLine(4, "12/05/23, 10:30 PM - Alice: <Media omitted>")
	require.Equal(t, Accepted, reject)
	assert.Equal(t, 4, rec.LineNumber)
	assert.Equal(t, "Alice", rec.Sender)
	assert.True(t, rec.IsMedia)
	assert.True(t, rec.Time.Known)
	assert.Equal(t, 22, rec.Time.Hour)
	assert.Equal(t, time.Date(2023, time.May, 12, 0, 0, 0, 0, time.UTC), rec.Time.Date)
	day, ok := rec.Weekday()
	assert.True(t, ok)
	assert.Equal(t, time.Friday, day)
	assert.Empty(t, rec.Sentiment)

	rec, reject = p.ParseLine(5, "yesterday - Bob: still counts")
	require.Equal(t, Accepted, reject)
	assert.False(t, rec.Time.Known)
	_, ok = rec.Weekday()
	assert.False(t, ok)

	_, reject = p.ParseLine(6, "12/05/23, Alice added Bob")
	assert.NotEqual(t, Accepted, reject)
}

func TestStartsWithTimestamp(t *testing.T) {
	p := NewParser(Options{DayFirst: true})
	assert.True(t, p.StartsWithTimestamp("12/05/23, 10:30 AM - Alice added Bob"))
	assert.False(t, p.StartsWithTimestamp("and then - he said"))
	assert.False(t, p.StartsWithTimestamp("second line of a message"))
}

func TestMediaMatcher(t *testing.T) {
	m := NewMediaMatcher(nil)
	assert.True(t, m.Match("<Media omitted>"))
	assert.True(t, m.Match("IMG-001.jpg (file attached) image omitted"))
	assert.True(t, m.Match("<attached: 00000012-PHOTO.jpg>"))
	assert.False(t, m.Match("social media is tiring"))
	assert.False(t, m.Match("Media"))

	custom := NewMediaMatcher([]string{" Media ", ""})
	assert.True(t, custom.Match("social media is tiring"))
	assert.True(t, custom.Match("Media"))
}
