// Package stats computes per-user and whole-chat statistics over a chat
// table. Every function is total: an empty table yields zero counts and
// unknown results, never an error.
package stats

import (
	"time"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
)

type UserStats struct {
	Sender        string `json:"sender" yaml:"sender"`
	TotalMessages int    `json:"total_messages" yaml:"total_messages"`
	MediaCount    int    `json:"media_count" yaml:"media_count"`
}

// TotalAndMedia counts sender's messages and how many of them are media.
func TotalAndMedia(t *chat.Table, sender string) UserStats {
	us := UserStats{Sender: sender}
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		if r.Sender != sender {
			continue
		}
		us.TotalMessages++
		if r.IsMedia {
			us.MediaCount++
		}
	}
	return us
}

// AllUsers returns UserStats for every sender in first-occurrence order.
func AllUsers(t *chat.Table) []UserStats {
	idx := make(map[string]int)
	var out []UserStats
	for _, u := range t.Users() {
		idx[u] = len(out)
		out = append(out, UserStats{Sender: u})
	}
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		us := &out[idx[r.Sender]]
		us.TotalMessages++
		if r.IsMedia {
			us.MediaCount++
		}
	}
	return out
}

// Ranking is unknown (Known false) only for an empty table.
type Ranking struct {
	Most       string `json:"most_talkative,omitempty" yaml:"most_talkative,omitempty"`
	MostCount  int    `json:"most_count" yaml:"most_count"`
	Least      string `json:"least_talkative,omitempty" yaml:"least_talkative,omitempty"`
	LeastCount int    `json:"least_count" yaml:"least_count"`
	Known      bool   `json:"known" yaml:"known"`
}

// TalkativeRanking picks the senders with the most and fewest messages.
// Ties go to the sender whose first message comes earliest.
func TalkativeRanking(t *chat.Table) Ranking {
	users := AllUsers(t)
	if len(users) == 0 {
		return Ranking{}
	}
	rk := Ranking{
		Most: users[0].Sender, MostCount: users[0].TotalMessages,
		Least: users[0].Sender, LeastCount: users[0].TotalMessages,
		Known: true,
	}
	for _, u := range users[1:] {
		if u.TotalMessages > rk.MostCount {
			rk.Most, rk.MostCount = u.Sender, u.TotalMessages
		}
		if u.TotalMessages < rk.LeastCount {
			rk.Least, rk.LeastCount = u.Sender, u.TotalMessages
		}
	}
	return rk
}

// Activity counts records by weekday and by hour. Records with an unknown
// timestamp are left out of both.
type Activity struct {
	ByWeekday [7]int // indexed by time.Weekday
	ByHour    [24]int

	BusiestDay  time.Weekday
	DayKnown    bool
	BusiestHour int
	HourKnown   bool
}

// ActivityProfile finds the busiest weekday and hour. Ties go to the value
// that appears first in the table.
func ActivityProfile(t *chat.Table) Activity {
	var a Activity
	dayFirst := [7]int{}
	hourFirst := [24]int{}
	for i := range dayFirst {
		dayFirst[i] = -1
	}
	for i := range hourFirst {
		hourFirst[i] = -1
	}

	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		wd, ok := r.Weekday()
		if !ok {
			continue
		}
		a.ByWeekday[wd]++
		if dayFirst[wd] < 0 {
			dayFirst[wd] = i
		}
		a.ByHour[r.Time.Hour]++
		if hourFirst[r.Time.Hour] < 0 {
			hourFirst[r.Time.Hour] = i
		}
	}

	if d, ok := mode(a.ByWeekday[:], dayFirst[:]); ok {
		a.BusiestDay, a.DayKnown = time.Weekday(d), true
	}
	if h, ok := mode(a.ByHour[:], hourFirst[:]); ok {
		a.BusiestHour, a.HourKnown = h, true
	}
	return a
}

func (a Activity) DayCount() int {
	if !a.DayKnown {
		return 0
	}
	return a.ByWeekday[a.BusiestDay]
}

func (a Activity) HourCount() int {
	if !a.HourKnown {
		return 0
	}
	return a.ByHour[a.BusiestHour]
}

// mode returns the index with the highest count, preferring the smallest
// first-seen position on ties.
func mode(counts, first []int) (int, bool) {
	best := -1
	for i, c := range counts {
		if c == 0 {
			continue
		}
		if best < 0 || c > counts[best] || (c == counts[best] && first[i] < first[best]) {
			best = i
		}
	}
	return best, best >= 0
}

type CrossRow struct {
	Sender string
	Counts [3]int // in classify.Sentiments order
}

// CrossTab is dense: one row per sender, every label present.
type CrossTab struct {
	Rows []CrossRow
}

// SentimentCrossTab labels every message with s and tallies (sender, label)
// pairs. With a nil s the table's stored labels are used. Labels outside the
// three known ones count as Neutral.
func SentimentCrossTab(t *chat.Table, s classify.Sentimenter) CrossTab {
	users := t.Users()
	ct := CrossTab{Rows: make([]CrossRow, len(users))}
	idx := make(map[string]int, len(users))
	for i, u := range users {
		ct.Rows[i].Sender = u
		idx[u] = i
	}
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		label := r.Sentiment
		if s != nil {
			label = s.Classify(r.Message)
		}
		ct.Rows[idx[r.Sender]].Counts[label.OrNeutral().Index()]++
	}
	return ct
}

// Get returns the count for (sender, label); zero for unknown pairs.
func (c CrossTab) Get(sender string, label classify.Sentiment) int {
	col := label.Index()
	if col < 0 {
		return 0
	}
	for _, r := range c.Rows {
		if r.Sender == sender {
			return r.Counts[col]
		}
	}
	return 0
}

// Cells is the number of (sender, label) entries.
func (c CrossTab) Cells() int { return len(c.Rows) * len(classify.Sentiments) }

func (c CrossTab) Total() int {
	n := 0
	for _, r := range c.Rows {
		for _, v := range r.Counts {
			n += v
		}
	}
	return n
}

type FlirtRow struct {
	Sender string `json:"sender" yaml:"sender"`
	Flirt  int    `json:"flirt" yaml:"flirt"`
	Normal int    `json:"normal" yaml:"normal"`
}

// FlirtCounts tallies f's labels per sender, in first-occurrence order.
func FlirtCounts(t *chat.Table, f classify.Flirter) []FlirtRow {
	users := t.Users()
	out := make([]FlirtRow, len(users))
	idx := make(map[string]int, len(users))
	for i, u := range users {
		out[i].Sender = u
		idx[u] = i
	}
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		row := &out[idx[r.Sender]]
		if f.Classify(r.Message) == classify.Flirty {
			row.Flirt++
		} else {
			row.Normal++
		}
	}
	return out
}
