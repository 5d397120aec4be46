package backend

import (
	"strings"
	"time"
)

// HistoryEntry is one stored turn of a session, oldest first.
type HistoryEntry struct {
	ID        string
	Message   string
	Response  string
	Timestamp time.Time
}

// Reply is the non-streaming answer to a message.
type Reply struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// UploadResult is the backend's acknowledgement of an uploaded document.
type UploadResult struct {
	Message  string
	FileName string
	Size     int64
}

type messageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// timestampLayouts are tried in order. The backend may omit the zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when s matches no known layout.
// Zone-less values are read as local time.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return t
		}
	}

	return time.Time{}
}
