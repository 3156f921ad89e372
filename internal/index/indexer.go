package index

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/logging"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/metrics"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/parse"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

type Options struct {
	Load chat.LoadOptions
	// Sentimenter labels messages before they are stored. Nil stores them
	// unlabelled.
	Sentimenter classify.Sentimenter
	// Force re-indexes transcripts whose mtime and size are unchanged.
	Force bool
	// Fingerprint identifies the load and label settings. When it differs
	// from the one stored by the previous run every transcript is
	// re-indexed. Empty skips the check.
	Fingerprint string
}

// Fingerprint hashes the settings that shape stored rows.
func Fingerprint(settings ...any) string {
	return strconv.FormatUint(xxhash.Sum64String(fmt.Sprintf("%#v", settings)), 16)
}

// IndexAll indexes every transcript under root and prunes indexed
// transcripts under root that are gone. A transcript that fails to load is
// counted and skipped.
func IndexAll(ctx context.Context, db *DB, root string, opts Options) (Stats, error) {
	var stats Stats
	log := logging.L()

	files, err := scan.FindTranscripts(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	if opts.Fingerprint != "" {
		reset, err := db.resetOnChange(metaFingerprint, opts.Fingerprint)
		if err != nil {
			return stats, fmt.Errorf("check settings: %w", err)
		}
		if reset {
			log.Debug().Str("fingerprint", opts.Fingerprint).Msg("settings changed, re-indexing")
		}
	}

	// track which files we see, for pruning
	seen := make(map[string]struct{})

	for _, fi := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		seen[fi.Path] = struct{}{}

		if !opts.Force {
			needs, err := needsUpdate(db, fi)
			if err != nil {
				stats.Errors++
				metrics.TranscriptsIndexed.WithLabelValues("error").Inc()
				log.Warn().Err(err).Str(logging.FieldPath, fi.Path).Msg("check index state")
				continue
			}
			if !needs {
				stats.Skipped++
				metrics.TranscriptsIndexed.WithLabelValues("unchanged").Inc()
				continue
			}
		}

		if err := IndexTranscript(ctx, db, fi, opts); err != nil {
			stats.Errors++
			metrics.TranscriptsIndexed.WithLabelValues("error").Inc()
			log.Warn().Err(err).Str(logging.FieldPath, fi.Path).Msg("index transcript")
			continue
		}
		stats.Updated++
		metrics.TranscriptsIndexed.WithLabelValues("updated").Inc()
	}

	pruned, err := pruneTranscripts(db, root, seen)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned
	metrics.TranscriptsIndexed.WithLabelValues("pruned").Add(float64(pruned))

	return stats, nil
}

func needsUpdate(db *DB, fi scan.FileInfo) (bool, error) {
	info, err := db.GetTranscript(fi.Path)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new transcript
	}
	return info.Mtime != fi.Mtime || info.Size != fi.Size, nil
}

// IndexTranscript loads one transcript and replaces whatever is stored for it.
func IndexTranscript(ctx context.Context, db *DB, fi scan.FileInfo, opts Options) error {
	tbl, err := chat.Load(ctx, fi.Path, opts.Load)
	if err != nil {
		return err
	}
	if opts.Sentimenter != nil {
		tbl = tbl.WithSentiment(opts.Sentimenter)
	}
	return storeTable(db, fi, tbl)
}

func storeTable(db *DB, fi scan.FileInfo, tbl *chat.Table) error {
	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// delete old data first
	if _, err := tx.Exec("DELETE FROM messages WHERE path = ?", fi.Path); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM transcripts WHERE path = ?", fi.Path); err != nil {
		return err
	}

	st := tbl.Stats()
	_, err = tx.Exec(
		`INSERT INTO transcripts (path, mtime, size, lines, records, skipped, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fi.Path, fi.Mtime, fi.Size, st.Lines, st.Records, st.TotalSkipped(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (` + messageColumns + `)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < tbl.Len(); i++ {
		r := tbl.At(i)
		date, hour := "", -1
		if r.Time.Known {
			date, hour = r.Time.Date.Format(dateLayout), r.Time.Hour
		}
		media := 0
		if r.IsMedia {
			media = 1
		}
		if _, err := stmt.Exec(fi.Path, i, r.LineNumber, date, hour, r.Sender, r.Message, media, string(r.Sentiment)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneTranscripts(db *DB, root string, seen map[string]struct{}) (int, error) {
	all, err := db.Transcripts()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, t := range all {
		if !within(root, t.Path) {
			continue
		}
		if _, ok := seen[t.Path]; !ok {
			if err := db.DeleteTranscript(t.Path); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}

func within(root, path string) bool {
	root = filepath.Clean(root)
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// LoadTable rebuilds a chat table from the stored messages of path.
func LoadTable(db *DB, path string) (*chat.Table, error) {
	rows, err := db.GetMessages(path)
	if err != nil {
		return nil, err
	}
	records := make([]parse.Record, len(rows))
	for i, m := range rows {
		records[i] = m.Record()
	}
	return chat.New(records), nil
}
