package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/logging"
)

type Result struct {
	Path       string
	Seq        int
	LineNumber int
	Date       string
	Hour       int
	Sender     string
	Sentiment  string
	Snippet    string
	Rank       float64
}

type Options struct {
	Query     string
	Path      string // "" = every indexed transcript
	Sender    string // "" = all
	Sentiment string // "" = all
	Since     string // "" = no filter, e.g. "2024-01-01"; unknown dates never match
	Limit     int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	runes := []rune(text)
	if idx < 0 || len(lower) != len(text) {
		// no match, or case folding moved byte offsets: return head
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := max(runePos-contextChars, 0)
	end := min(runePos+len(qRunes)+contextChars, len(runes))
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// quoteFTS turns free text into a conjunction of quoted FTS5 phrases so
// punctuation in a message query is not read as query syntax.
func quoteFTS(q string) string {
	var parts []string
	for _, f := range strings.Fields(q) {
		parts = append(parts, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(parts, " ")
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("empty query")
	}

	if containsCJK(opts.Query) {
		return searchLike(db, opts)
	}

	results, err := searchFTS(db, opts, opts.Query)
	if err != nil {
		quoted := quoteFTS(opts.Query)
		logging.L().Debug().Err(err).Str("query", quoted).Msg("retry search with quoted query")
		results, err = searchFTS(db, opts, quoted)
	}
	return results, err
}

// filters returns the shared WHERE conditions for message filters.
func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any

	if opts.Path != "" {
		conditions = append(conditions, "m.path = ?")
		args = append(args, opts.Path)
	}
	if opts.Sender != "" {
		conditions = append(conditions, "m.sender = ?")
		args = append(args, opts.Sender)
	}
	if opts.Sentiment != "" {
		conditions = append(conditions, "m.sentiment = ?")
		args = append(args, opts.Sentiment)
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.date != '' AND m.date >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options, match string) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []any{match}

	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT
			m.path,
			m.seq,
			m.line_number,
			m.date,
			m.hour,
			m.sender,
			m.sentiment,
			snippet(messages_fts, 0, '>>>','<<<', '...', 40) as snip,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		WHERE %s
		ORDER BY rank, m.path, m.seq
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	// LIKE match for CJK substring search
	conditions := []string{"m.message LIKE ?"}
	args := []any{"%" + opts.Query + "%"}

	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT
			m.path,
			m.seq,
			m.line_number,
			m.date,
			m.hour,
			m.sender,
			m.sentiment,
			m.message
		FROM messages m
		WHERE %s
		ORDER BY m.date DESC, m.path, m.seq
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.Path, &r.Seq, &r.LineNumber, &r.Date, &r.Hour,
			&r.Sender, &r.Sentiment, &fullText,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.Path, &r.Seq, &r.LineNumber, &r.Date, &r.Hour,
			&r.Sender, &r.Sentiment, &r.Snippet, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
