package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/stats"
)

const (
	maxNameWidth = 24
	barWidth     = 30
)

// FitName pads or truncates s to exactly width terminal columns.
func FitName(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// Report writes r as a human-readable text report.
func Report(w io.Writer, r stats.Report, color bool) error {
	p := newPalette(color)
	var b strings.Builder

	if r.Transcript != "" {
		fmt.Fprintf(&b, "%sTranscript:%s %s\n", p.bold, p.reset, r.Transcript)
	}
	skipped := 0
	for _, n := range r.Skipped {
		skipped += n
	}
	fmt.Fprintf(&b, "%sRecords:%s %d (%d lines, %d skipped, %d unknown timestamps)\n",
		p.bold, p.reset, r.Records, r.Lines, skipped, r.UnknownTimestamps)
	if skipped > 0 {
		var parts []string
		for _, reason := range (chat.BuildStats{Skipped: r.Skipped}).SkipReasons() {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, r.Skipped[reason]))
		}
		fmt.Fprintf(&b, "%sSkipped: %s%s\n", p.dim, strings.Join(parts, " "), p.reset)
	}
	b.WriteString("\n")

	unknown := p.dim + "unknown" + p.reset
	if r.Ranking.Known {
		fmt.Fprintf(&b, "Most talkative:  %s%s%s (%d)\n", p.sender(r.Ranking.Most), r.Ranking.Most, p.reset, r.Ranking.MostCount)
		fmt.Fprintf(&b, "Least talkative: %s%s%s (%d)\n", p.sender(r.Ranking.Least), r.Ranking.Least, p.reset, r.Ranking.LeastCount)
	} else {
		fmt.Fprintf(&b, "Most talkative:  %s\nLeast talkative: %s\n", unknown, unknown)
	}
	if r.Activity.BusiestDay != "" {
		fmt.Fprintf(&b, "Busiest day:     %s (%d)\n", r.Activity.BusiestDay, r.Activity.BusiestDayCount)
	} else {
		fmt.Fprintf(&b, "Busiest day:     %s\n", unknown)
	}
	if r.Activity.BusiestHour != nil {
		fmt.Fprintf(&b, "Busiest hour:    %02d:00 (%d)\n", *r.Activity.BusiestHour, r.Activity.BusiestHourCount)
	} else {
		fmt.Fprintf(&b, "Busiest hour:    %s\n", unknown)
	}

	if len(r.Users) > 0 {
		b.WriteString("\n")
		writeUserTable(&b, r, p)
	}

	if r.Activity.BusiestDay != "" {
		b.WriteString("\nMessages by weekday\n")
		labels := make([]string, 7)
		counts := make([]int, 7)
		for d := range 7 {
			labels[d] = time.Weekday(d).String()[:3]
			counts[d] = r.Activity.ByWeekday[time.Weekday(d).String()]
		}
		writeBars(&b, labels, counts, p)
	}
	if r.Activity.BusiestHour != nil {
		b.WriteString("\nMessages by hour\n")
		labels := make([]string, 24)
		for h := range 24 {
			labels[h] = fmt.Sprintf("%02d", h)
		}
		writeBars(&b, labels, r.Activity.ByHour[:], p)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeUserTable(b *strings.Builder, r stats.Report, p palette) {
	nameW := runewidth.StringWidth("SENDER")
	for _, u := range r.Users {
		nameW = max(nameW, runewidth.StringWidth(u.Sender))
	}
	nameW = min(nameW, maxNameWidth)

	sent := make(map[string]stats.SentimentRow, len(r.Sentiment))
	for _, s := range r.Sentiment {
		sent[s.Sender] = s
	}
	flirt := make(map[string]stats.FlirtRow, len(r.Flirt))
	for _, f := range r.Flirt {
		flirt[f.Sender] = f
	}

	fmt.Fprintf(b, "%s%s %8s %6s %8s %8s %8s %6s%s\n", p.bold, FitName("SENDER", nameW),
		"MESSAGES", "MEDIA", "POSITIVE", "NEGATIVE", "NEUTRAL", "FLIRT", p.reset)
	for _, u := range r.Users {
		s := sent[u.Sender]
		fmt.Fprintf(b, "%s%s%s %8d %6d %8d %8d %8d %6d\n",
			p.sender(u.Sender), FitName(u.Sender, nameW), p.reset,
			u.TotalMessages, u.MediaCount, s.Positive, s.Negative, s.Neutral, flirt[u.Sender].Flirt)
	}
}

func writeBars(b *strings.Builder, labels []string, counts []int, p palette) {
	peak := 0
	for _, c := range counts {
		peak = max(peak, c)
	}
	for i, c := range counts {
		n := 0
		if peak > 0 {
			n = (c*barWidth + peak - 1) / peak
		}
		fmt.Fprintf(b, "  %s %s%s%s %d\n", labels[i], p.pos, strings.Repeat("█", n), p.reset, c)
	}
}

// Analysis describes the labels of a single message.
type Analysis struct {
	Text      string
	Score     float64
	Sentiment classify.Sentiment
	Flirt     classify.Flirt
}

func WriteAnalysis(w io.Writer, a Analysis, color bool) error {
	p := newPalette(color)
	_, err := fmt.Fprintf(w, "Message:   %s\nSentiment: %s%s%s (%.4f)\nFlirt:     %s\n",
		a.Text, p.sentiment(string(a.Sentiment)), a.Sentiment, p.reset, a.Score, a.Flirt)
	return err
}
