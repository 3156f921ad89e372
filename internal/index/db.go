package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/parse"
)

// ErrNotIndexed is returned when a transcript has not been indexed yet.
var ErrNotIndexed = errors.New("transcript not indexed")

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS transcripts (
    path       TEXT PRIMARY KEY,
    mtime      INTEGER NOT NULL DEFAULT 0,
    size       INTEGER NOT NULL DEFAULT 0,
    lines      INTEGER NOT NULL DEFAULT 0,
    records    INTEGER NOT NULL DEFAULT 0,
    skipped    INTEGER NOT NULL DEFAULT 0,
    indexed_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
    path        TEXT NOT NULL,
    seq         INTEGER NOT NULL,
    line_number INTEGER NOT NULL,
    date        TEXT NOT NULL DEFAULT '',
    hour        INTEGER NOT NULL DEFAULT -1,
    sender      TEXT NOT NULL,
    message     TEXT NOT NULL,
    is_media    INTEGER NOT NULL DEFAULT 0,
    sentiment   TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (path, seq)
);

CREATE INDEX IF NOT EXISTS messages_sender ON messages(path, sender);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    message,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, message) VALUES (new.rowid, new.message);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, message) VALUES('delete', old.rowid, old.message);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, message) VALUES('delete', old.rowid, old.message);
    INSERT INTO messages_fts(rowid, message) VALUES (new.rowid, new.message);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// dateLayout is how known dates are stored; unknown dates are ''.
const dateLayout = "2006-01-02"

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever parsing or labelling changes
// to force a full re-index.
const schemaVersion = "2"

const (
	metaSchemaVersion = "schema_version"
	metaFingerprint   = "options_fingerprint"
)

func (d *DB) migrateSchemaVersion() error {
	_, err := d.resetOnChange(metaSchemaVersion, schemaVersion)
	return err
}

// resetOnChange stores value under key in meta. When it differs from the
// stored one every transcript's mtime/size is reset so the next IndexAll
// re-indexes it. It reports whether a reset happened.
func (d *DB) resetOnChange(key, value string) (bool, error) {
	var old string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&old)
	if err == nil && old == value {
		return false, nil
	}
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	tx, err := d.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()
	if _, err := tx.Exec("UPDATE transcripts SET mtime = 0, size = 0"); err != nil {
		return false, err
	}
	if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type TranscriptInfo struct {
	Path      string
	Mtime     int64
	Size      int64
	Lines     int
	Records   int
	Skipped   int
	IndexedAt string
}

// GetTranscript returns nil, nil when path is not indexed.
func (d *DB) GetTranscript(path string) (*TranscriptInfo, error) {
	var info TranscriptInfo
	err := d.db.QueryRow(
		"SELECT path, mtime, size, lines, records, skipped, indexed_at FROM transcripts WHERE path = ?",
		path,
	).Scan(&info.Path, &info.Mtime, &info.Size, &info.Lines, &info.Records, &info.Skipped, &info.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) Transcripts() ([]TranscriptInfo, error) {
	rows, err := d.db.Query("SELECT path, mtime, size, lines, records, skipped, indexed_at FROM transcripts ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TranscriptInfo
	for rows.Next() {
		var info TranscriptInfo
		if err := rows.Scan(&info.Path, &info.Mtime, &info.Size, &info.Lines, &info.Records, &info.Skipped, &info.IndexedAt); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (d *DB) DeleteTranscript(path string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE path = ?", path); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM transcripts WHERE path = ?", path); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) TranscriptCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

type MessageRow struct {
	Path       string
	Seq        int
	LineNumber int
	Date       string // YYYY-MM-DD, empty when unknown
	Hour       int    // -1 when unknown
	Sender     string
	Message    string
	IsMedia    bool
	Sentiment  string
}

// Record converts the row back into a parsed record.
func (m MessageRow) Record() parse.Record {
	r := parse.Record{
		LineNumber: m.LineNumber,
		Sender:     m.Sender,
		Message:    m.Message,
		IsMedia:    m.IsMedia,
		Sentiment:  classify.Sentiment(m.Sentiment),
	}
	if m.Date != "" && m.Hour >= 0 {
		if day, err := time.Parse(dateLayout, m.Date); err == nil {
			r.Time = parse.Timestamp{Date: day, Hour: m.Hour, Known: true}
		}
	}
	return r
}

const messageColumns = "path, seq, line_number, date, hour, sender, message, is_media, sentiment"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(s rowScanner) (MessageRow, error) {
	var m MessageRow
	var media int
	err := s.Scan(&m.Path, &m.Seq, &m.LineNumber, &m.Date, &m.Hour, &m.Sender, &m.Message, &media, &m.Sentiment)
	m.IsMedia = media != 0
	return m, err
}

// GetMessages returns every message of path in source order.
func (d *DB) GetMessages(path string) ([]MessageRow, error) {
	info, err := d.GetTranscript(path)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotIndexed)
	}

	rows, err := d.db.Query("SELECT "+messageColumns+" FROM messages WHERE path = ? ORDER BY seq", path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MessageRow
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Window is a run of messages around a hit.
type Window struct {
	Messages []MessageRow
	HitIdx   int // index of the hit in Messages, -1 when none
	StartPos int // messages before the window
	Total    int // messages in the transcript
}

// GetMessagesWindow returns up to context messages either side of the
// message at line. A line inside a merged message resolves to that message.
// A line of 0 or less returns the whole transcript.
func (d *DB) GetMessagesWindow(path string, line, context int) (Window, error) {
	w := Window{HitIdx: -1}

	info, err := d.GetTranscript(path)
	if err != nil {
		return w, err
	}
	if info == nil {
		return w, fmt.Errorf("%s: %w", path, ErrNotIndexed)
	}

	if err := d.db.QueryRow("SELECT COUNT(*) FROM messages WHERE path = ?", path).Scan(&w.Total); err != nil {
		return w, err
	}

	hitSeq := -1
	if line > 0 {
		err = d.db.QueryRow(
			"SELECT seq FROM messages WHERE path = ? AND line_number <= ? ORDER BY line_number DESC LIMIT 1",
			path, line,
		).Scan(&hitSeq)
		if err != nil && err != sql.ErrNoRows {
			return w, err
		}
	}

	limit := w.Total
	if hitSeq >= 0 {
		w.StartPos = max(hitSeq-context, 0)
		limit = min(hitSeq+context+1, w.Total) - w.StartPos
	}

	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE path = ? ORDER BY seq LIMIT ? OFFSET ?",
		path, limit, w.StartPos,
	)
	if err != nil {
		return w, err
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return w, err
		}
		if m.Seq == hitSeq {
			w.HitIdx = len(w.Messages)
		}
		w.Messages = append(w.Messages, m)
	}
	return w, rows.Err()
}
