package classify

import "strings"

// DefaultFlirtMarkers are the emoji that mark a message as flirty.
var DefaultFlirtMarkers = []string{"😍", "😘", "❤️", "😂", "🤣", "😉", "😜"}

// MarkerFlirter labels a message Flirt when it contains any marker substring.
type MarkerFlirter struct {
	markers []string
}

// NewMarkerFlirter uses DefaultFlirtMarkers when markers is empty.
func NewMarkerFlirter(markers []string) *MarkerFlirter {
	var m []string
	for _, s := range markers {
		if s != "" {
			m = append(m, s)
		}
	}
	if len(m) == 0 {
		m = append(m, DefaultFlirtMarkers...)
	}
	return &MarkerFlirter{markers: m}
}

func (f *MarkerFlirter) Classify(text string) Flirt {
	for _, m := range f.markers {
		if strings.Contains(text, m) {
			return Flirty
		}
	}
	return Normal
}

func (f *MarkerFlirter) Markers() []string {
	return append([]string(nil), f.markers...)
}
