package parse

import "strings"

// DefaultMediaTokens are the placeholders exports write instead of attachments.
// A bare "Media" is not among them, so a message that merely mentions media
// is text; set media_tokens to widen the match.
var DefaultMediaTokens = []string{
	"<Media omitted>",
	"image omitted",
	"video omitted",
	"audio omitted",
	"sticker omitted",
	"GIF omitted",
	"document omitted",
	"<attached:",
}

// MediaMatcher is a case-insensitive substring test against media placeholders.
type MediaMatcher struct {
	tokens []string
}

func NewMediaMatcher(tokens []string) *MediaMatcher {
	if len(tokens) == 0 {
		tokens = DefaultMediaTokens
	}
	m := &MediaMatcher{}
	for _, t := range tokens {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			m.tokens = append(m.tokens, t)
		}
	}
	return m
}

func (m *MediaMatcher) Match(msg string) bool {
	lower := strings.ToLower(msg)
	for _, t := range m.tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
