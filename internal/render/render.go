package render

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
)

const (
	colorReset   = "\033[0m"
	colorDim     = "\033[2m"
	colorBold    = "\033[1m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
	colorPos     = "\033[32m"
	colorNeg     = "\033[31m"
)

// senderColors are assigned to senders by name hash so a sender keeps its
// colour across runs.
var senderColors = []string{
	"\033[1;34m", // bold blue
	"\033[1;32m", // bold green
	"\033[1;35m", // bold magenta
	"\033[1;36m", // bold cyan
	"\033[1;33m", // bold yellow
}

// palette holds the escape codes in use; the zero palette renders plain text.
type palette struct {
	reset, dim, bold, hit, keyword, pos, neg string
	senders                                  []string
}

func newPalette(color bool) palette {
	if !color {
		return palette{}
	}
	return palette{
		reset: colorReset, dim: colorDim, bold: colorBold, hit: colorHit,
		keyword: colorBoldRed, pos: colorPos, neg: colorNeg,
		senders: senderColors,
	}
}

func (p palette) sender(name string) string {
	if len(p.senders) == 0 {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	return p.senders[h.Sum32()%uint32(len(p.senders))]
}

func (p palette) sentiment(label string) string {
	switch label {
	case "Positive":
		return p.pos
	case "Negative":
		return p.neg
	}
	return p.dim
}

type Options struct {
	Line    int    // transcript line of the hit; 0 = none
	Context int    // messages before/after hit to show
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting
	Color   bool
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in on/off.
func highlightKeywords(text, query, on, off string) string {
	if query == "" || on == "" {
		return text
	}
	var filtered []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"*`)
		if t != "" && !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			rest := strings.ToLower(text[i:])
			if len(rest) != len(text[i:]) {
				break // case folding changed byte lengths; offsets would be wrong
			}
			idx := strings.Index(rest, lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := on + orig + off
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth && visW > 0 {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// When formats a stored date and hour; unknown parts print as "?".
func When(date string, hour int) string {
	if date == "" || hour < 0 {
		return "????-??-?? ??h"
	}
	return fmt.Sprintf("%s %02dh", date, hour)
}

// RenderConversation renders a window of an indexed transcript and returns
// the content and the 0-based output line of the hit header (-1 if no hit).
func RenderConversation(db *index.DB, path string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}
	p := newPalette(opts.Color)

	w, err := db.GetMessagesWindow(path, opts.Line, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get messages: %w", err)
	}

	if w.Total == 0 {
		return "(empty transcript)", -1, nil
	}

	skipAfter := w.Total - w.StartPos - len(w.Messages)

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := p.dim + strings.Repeat("-", 50) + p.reset

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(fmt.Sprintf("%s--- %s (%d messages) ---%s", p.dim, path, w.Total, p.reset))

	if w.StartPos > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", p.dim, w.StartPos, p.reset))
	}

	for i, m := range w.Messages {
		isHit := i == w.HitIdx

		if i > 0 {
			writeLine(separator)
		}
		if isHit {
			hitLine = lineCount
		}

		tag := ""
		if m.Sentiment != "" {
			tag = fmt.Sprintf(" %s[%s]%s", p.sentiment(m.Sentiment), m.Sentiment, p.reset)
		}
		if m.IsMedia {
			tag += " " + p.dim + "[media]" + p.reset
		}

		when := When(m.Date, m.Hour)
		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s L%d <<%s%s", p.hit, m.Sender, when, m.LineNumber, p.reset, tag))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%s L%d%s%s", p.sender(m.Sender), m.Sender, p.reset, p.dim, when, m.LineNumber, p.reset, tag))
		}

		text := highlightKeywords(m.Message, opts.Query, p.keyword, p.reset)
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
		writeLine("") // blank line after message
	}

	if skipAfter > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", p.dim, skipAfter, p.reset))
	}

	return b.String(), hitLine, nil
}
