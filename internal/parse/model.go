package parse

import (
	"time"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
)

// Timestamp is a normalised message time. Date and Hour are either both
// meaningful (Known) or both absent.
type Timestamp struct {
	Date  time.Time // calendar date at UTC midnight
	Hour  int       // 0-23
	Known bool
}

func (t Timestamp) Weekday() (time.Weekday, bool) {
	if !t.Known {
		return 0, false
	}
	return t.Date.Weekday(), true
}

type Record struct {
	LineNumber int // 1-based line in the source transcript
	Time       Timestamp
	Sender     string
	Message    string
	IsMedia    bool
	Sentiment  classify.Sentiment // empty until labelled
}

func (r Record) Weekday() (time.Weekday, bool) { return r.Time.Weekday() }

// Reject says why a line did not become a Record. The zero value means accepted.
type Reject string

const (
	Accepted           Reject = ""
	RejectBlank        Reject = "blank"
	RejectNoTimestamp  Reject = "no_timestamp_separator"
	RejectNoSender     Reject = "no_sender_separator"
	RejectEmptySender  Reject = "empty_sender"
	RejectEmptyMessage Reject = "empty_message"
)

// RejectReasons lists every non-accepted Reject in reporting order.
var RejectReasons = []Reject{
	RejectBlank,
	RejectNoTimestamp,
	RejectNoSender,
	RejectEmptySender,
	RejectEmptyMessage,
}
