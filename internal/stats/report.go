package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
)

// Report is the serialisable view of every statistic for one table.
type Report struct {
	Transcript        string          `json:"transcript,omitempty" yaml:"transcript,omitempty"`
	Records           int             `json:"records" yaml:"records"`
	Lines             int             `json:"lines" yaml:"lines"`
	UnknownTimestamps int             `json:"unknown_timestamps" yaml:"unknown_timestamps"`
	Skipped           map[string]int  `json:"skipped" yaml:"skipped"`
	Users             []UserStats     `json:"users" yaml:"users"`
	Ranking           Ranking         `json:"ranking" yaml:"ranking"`
	Activity          ActivitySummary `json:"activity" yaml:"activity"`
	Sentiment         []SentimentRow  `json:"sentiment" yaml:"sentiment"`
	Flirt             []FlirtRow      `json:"flirt" yaml:"flirt"`
}

// ActivitySummary leaves busiest fields empty when unknown.
type ActivitySummary struct {
	BusiestDay       string         `json:"busiest_day,omitempty" yaml:"busiest_day,omitempty"`
	BusiestDayCount  int            `json:"busiest_day_count" yaml:"busiest_day_count"`
	BusiestHour      *int           `json:"busiest_hour,omitempty" yaml:"busiest_hour,omitempty"`
	BusiestHourCount int            `json:"busiest_hour_count" yaml:"busiest_hour_count"`
	ByWeekday        map[string]int `json:"by_weekday" yaml:"by_weekday"`
	ByHour           [24]int        `json:"by_hour" yaml:"by_hour,flow"`
}

type SentimentRow struct {
	Sender   string `json:"sender" yaml:"sender"`
	Positive int    `json:"positive" yaml:"positive"`
	Negative int    `json:"negative" yaml:"negative"`
	Neutral  int    `json:"neutral" yaml:"neutral"`
}

type ReportOptions struct {
	Transcript string
	// User restricts Users, Sentiment and Flirt to one sender. Ranking and
	// Activity always cover the whole table.
	User        string
	Sentimenter classify.Sentimenter
	Flirter     classify.Flirter
}

func BuildReport(t *chat.Table, opts ReportOptions) Report {
	st := t.Stats()
	r := Report{
		Transcript:        opts.Transcript,
		Records:           t.Len(),
		Lines:             st.Lines,
		UnknownTimestamps: st.UnknownTimestamps,
		Skipped:           st.Skipped,
		Ranking:           TalkativeRanking(t),
		Activity:          summarize(ActivityProfile(t)),
	}

	keep := func(sender string) bool { return opts.User == "" || sender == opts.User }

	for _, u := range AllUsers(t) {
		if keep(u.Sender) {
			r.Users = append(r.Users, u)
		}
	}
	for _, row := range SentimentCrossTab(t, opts.Sentimenter).Rows {
		if keep(row.Sender) {
			r.Sentiment = append(r.Sentiment, SentimentRow{
				Sender:   row.Sender,
				Positive: row.Counts[classify.Positive.Index()],
				Negative: row.Counts[classify.Negative.Index()],
				Neutral:  row.Counts[classify.Neutral.Index()],
			})
		}
	}
	flirter := opts.Flirter
	if flirter == nil {
		flirter = classify.NewMarkerFlirter(nil)
	}
	for _, row := range FlirtCounts(t, flirter) {
		if keep(row.Sender) {
			r.Flirt = append(r.Flirt, row)
		}
	}
	return r
}

func summarize(a Activity) ActivitySummary {
	s := ActivitySummary{
		BusiestDayCount:  a.DayCount(),
		BusiestHourCount: a.HourCount(),
		ByWeekday:        make(map[string]int, 7),
		ByHour:           a.ByHour,
	}
	for d, n := range a.ByWeekday {
		s.ByWeekday[time.Weekday(d).String()] = n
	}
	if a.DayKnown {
		s.BusiestDay = a.BusiestDay.String()
	}
	if a.HourKnown {
		h := a.BusiestHour
		s.BusiestHour = &h
	}
	return s
}

// Write encodes r as "json" or "yaml".
func (r Report) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
