package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Daily-sequence display IDs: PREFIX-YYYYMMDD-NNNN with a four-digit suffix
// that resets each calendar day. The next suffix is derived from the highest
// existing ID for the day (read-then-increment), which is racy under
// concurrent writers; acceptable at this system's approval volume.

const (
	RequestIDPrefix = "REQ"
	HistoryIDPrefix = "UH"
)

// DailyPrefix returns e.g. "REQ-20260829-" for the given day.
func DailyPrefix(kind string, day time.Time) string {
	return fmt.Sprintf("%s-%s-", kind, day.Format("20060102"))
}

// NextSequenceID builds the next ID for a day given the highest existing ID
// with the same prefix ("" if none). A malformed last ID restarts at 0001.
func NextSequenceID(prefix, last string) string {
	next := 1
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(last[len(prefix):]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, next)
}
