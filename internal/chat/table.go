// Package chat builds the ordered, immutable table of parsed chat records
// that every statistic is computed from.
package chat

import (
	"maps"
	"slices"
	"strings"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/logging"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/parse"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/scan"
)

// Skip reasons raised by the line reader rather than the parser.
const (
	SkipOversized = "oversized"
	SkipInvalid   = "invalid_encoding"
)

type Options struct {
	Parse parse.Options
	// MergeContinuations appends lines that neither parse nor start with a
	// timestamp to the previous record's message.
	MergeContinuations bool
}

type BuildStats struct {
	Lines             int
	Records           int
	Merged            int
	UnknownTimestamps int
	Skipped           map[string]int
}

func (s BuildStats) TotalSkipped() int {
	n := 0
	for _, v := range s.Skipped {
		n += v
	}
	return n
}

// SkipReasons returns the reasons with a non-zero count in a stable order.
func (s BuildStats) SkipReasons() []string {
	var out []string
	for _, r := range parse.RejectReasons {
		if s.Skipped[string(r)] > 0 {
			out = append(out, string(r))
		}
	}
	for _, r := range []string{SkipOversized, SkipInvalid} {
		if s.Skipped[r] > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Table is safe for concurrent reads. Nothing mutates it after construction.
type Table struct {
	records   []parse.Record
	users     []string
	firstSeen map[string]int
	stats     BuildStats
}

// New builds a table over records in the given order.
func New(records []parse.Record) *Table {
	t := &Table{
		records:   slices.Clone(records),
		firstSeen: make(map[string]int),
		stats:     BuildStats{Skipped: map[string]int{}},
	}
	for i, r := range t.records {
		if _, ok := t.firstSeen[r.Sender]; !ok {
			t.firstSeen[r.Sender] = i
			t.users = append(t.users, r.Sender)
		}
		if !r.Time.Known {
			t.stats.UnknownTimestamps++
		}
	}
	t.stats.Lines = len(t.records)
	t.stats.Records = len(t.records)
	return t
}

// Build parses lines in order and keeps the accepted ones. The same input
// always produces the same table.
func Build(lines []scan.Line, opts Options) *Table {
	p := parse.NewParser(opts.Parse)
	log := logging.L()

	var records []parse.Record
	skipped := map[string]int{}
	merged := 0

	for _, line := range lines {
		rec, reject := p.ParseLine(line.Number, line.Text)
		if reject == parse.Accepted {
			records = append(records, rec)
			continue
		}

		if opts.MergeContinuations && reject != parse.RejectBlank && len(records) > 0 &&
			!p.StartsWithTimestamp(line.Text) {
			last := &records[len(records)-1]
			last.Message += "\n" + strings.TrimSpace(line.Text)
			last.IsMedia = p.IsMedia(last.Message)
			merged++
			continue
		}

		skipped[string(reject)]++
		log.Debug().
			Int(logging.FieldLine, line.Number).
			Str(logging.FieldReason, string(reject)).
			Msg("skip line")
	}

	t := New(records)
	t.stats.Lines = len(lines)
	t.stats.Merged = merged
	t.stats.Skipped = skipped
	return t
}

func (t *Table) Len() int { return len(t.records) }

func (t *Table) At(i int) parse.Record { return t.records[i] }

// Records returns a copy of every record in source order.
func (t *Table) Records() []parse.Record { return slices.Clone(t.records) }

// Users returns distinct senders in order of their first message.
func (t *Table) Users() []string { return slices.Clone(t.users) }

// FirstIndex is the position of sender's first message.
func (t *Table) FirstIndex(sender string) (int, bool) {
	i, ok := t.firstSeen[sender]
	return i, ok
}

// FilterBySender returns sender's records in source order.
func (t *Table) FilterBySender(name string) []parse.Record {
	var out []parse.Record
	for _, r := range t.records {
		if r.Sender == name {
			out = append(out, r)
		}
	}
	return out
}

func (t *Table) Stats() BuildStats {
	s := t.stats
	s.Skipped = maps.Clone(t.stats.Skipped)
	if s.Skipped == nil {
		s.Skipped = map[string]int{}
	}
	return s
}

// WithSentiment returns a copy of the table with every record labelled by s.
// Invalid labels from s are stored as Neutral.
func (t *Table) WithSentiment(s classify.Sentimenter) *Table {
	out := &Table{
		records:   slices.Clone(t.records),
		users:     t.users,
		firstSeen: t.firstSeen,
		stats:     t.Stats(),
	}
	for i := range out.records {
		out.records[i].Sentiment = s.Classify(out.records[i].Message).OrNeutral()
	}
	return out
}
