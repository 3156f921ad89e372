package chat

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/logging"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/metrics"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/scan"
)

type LoadOptions struct {
	Options
	// ReadTimeout bounds the bulk read; zero means no limit.
	ReadTimeout time.Duration
	MaxLineSize int
}

// Load reads the transcript at path and builds its table. Unreadable or
// undecodable input is an error and no table is returned.
func Load(ctx context.Context, path string, opts LoadOptions) (*Table, error) {
	start := time.Now()
	defer metrics.ObserveLoad(start)

	if opts.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ReadTimeout)
		defer cancel()
	}

	res, err := scan.ReadFile(ctx, path, scan.Options{MaxLineSize: opts.MaxLineSize})
	if err != nil {
		metrics.LoadErrors.Inc()
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	t := Build(res.Lines, opts.Options)
	t.stats.Lines = res.Read
	if res.Oversized > 0 {
		t.stats.Skipped[SkipOversized] += res.Oversized
	}
	if res.Invalid > 0 {
		t.stats.Skipped[SkipInvalid] += res.Invalid
	}

	metrics.LinesRead.Add(float64(res.Read))
	metrics.RecordsParsed.Add(float64(t.stats.Records))
	metrics.UnknownTimestamps.Add(float64(t.stats.UnknownTimestamps))
	for reason, n := range t.stats.Skipped {
		metrics.IncSkipped(reason, n)
	}

	logging.L().Info().
		Str(logging.FieldPath, path).
		Int("lines", t.stats.Lines).
		Int("records", t.stats.Records).
		Int("skipped", t.stats.TotalSkipped()).
		Int("unknown_timestamps", t.stats.UnknownTimestamps).
		Int64(logging.FieldElapsed, time.Since(start).Milliseconds()).
		Msg("transcript loaded")

	return t, nil
}

// Holder publishes the current table. Readers always see a complete table;
// a rebuild is swapped in whole.
type Holder struct {
	p atomic.Pointer[Table]
}

func NewHolder(t *Table) *Holder {
	h := &Holder{}
	h.Swap(t)
	return h
}

// Table never returns nil.
func (h *Holder) Table() *Table {
	if t := h.p.Load(); t != nil {
		return t
	}
	return New(nil)
}

// Swap installs t and returns the previous table.
func (h *Holder) Swap(t *Table) *Table {
	if t == nil {
		t = New(nil)
	}
	return h.p.Swap(t)
}

// Reload builds a fresh table from path and swaps it in. On error the
// current table stays in place.
func (h *Holder) Reload(ctx context.Context, path string, opts LoadOptions) error {
	t, err := Load(ctx, path, opts)
	if err != nil {
		return err
	}
	h.Swap(t)
	return nil
}
