package parse

import (
	"strings"
	"unicode"
)

const (
	timestampSep = " - "
	senderSep    = ": "
)

type Options struct {
	DayFirst    bool
	MediaTokens []string
}

// Parser turns raw transcript lines into Records. It holds no mutable
// state and can be shared.
type Parser struct {
	ts    *TimestampNormalizer
	media *MediaMatcher
}

func NewParser(opts Options) *Parser {
	return &Parser{
		ts:    NewTimestampNormalizer(opts.DayFirst),
		media: NewMediaMatcher(opts.MediaTokens),
	}
}

// SplitLine applies the two separators of the export format:
//
//	<timestamp> - <sender>: <message>
//
// Only the first " - " and the first ": " after it are boundaries, so a
// message may contain either separator but a sender name may not contain ": ".
func SplitLine(raw string) (timestamp, sender, message string, reject Reject) {
	// keep trailing spaces: "Alice: " is an empty message, not a system notice
	line := strings.TrimLeftFunc(strings.TrimRight(raw, "\r\n"), unicode.IsSpace)
	if strings.TrimSpace(line) == "" {
		return "", "", "", RejectBlank
	}

	ts, rest, ok := strings.Cut(line, timestampSep)
	if !ok {
		return "", "", "", RejectNoTimestamp
	}

	name, body, ok := strings.Cut(rest, senderSep)
	if !ok {
		// "X added Y", "Messages are end-to-end encrypted", ...
		return "", "", "", RejectNoSender
	}

	name = cleanSender(name)
	if name == "" {
		return "", "", "", RejectEmptySender
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", "", "", RejectEmptyMessage
	}
	return strings.TrimSpace(ts), name, body, Accepted
}

// cleanSender drops the bidi and direction marks (U+200E, U+202A..U+202C)
// exports wrap around some names, so the same contact is one sender.
func cleanSender(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}

// ParseLine never fails: malformed input yields a non-empty Reject.
// An unparsable timestamp keeps the record with Time.Known false.
func (p *Parser) ParseLine(number int, raw string) (Record, Reject) {
	ts, sender, msg, reject := SplitLine(raw)
	if reject != Accepted {
		return Record{}, reject
	}
	return Record{
		LineNumber: number,
		Time:       p.ts.Normalize(ts),
		Sender:     sender,
		Message:    msg,
		IsMedia:    p.media.Match(msg),
	}, Accepted
}

// StartsWithTimestamp reports whether raw opens with a parsable timestamp
// followed by the " - " separator, i.e. looks like the start of a new entry
// rather than the continuation of a multi-line message.
func (p *Parser) StartsWithTimestamp(raw string) bool {
	ts, _, ok := strings.Cut(strings.TrimSpace(raw), timestampSep)
	if !ok {
		return false
	}
	return p.ts.Normalize(ts).Known
}

// IsMedia reports whether msg is a media placeholder.
func (p *Parser) IsMedia(msg string) bool {
	return p.media.Match(msg)
}
