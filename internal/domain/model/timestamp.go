package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Zone-less layouts the backend emits; they are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// Timestamp is an ISO-8601 instant that tolerates a missing zone offset.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses RFC 3339 and zone-less ISO-8601 values.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// UnmarshalJSON accepts a JSON string. Empty, non-string and unparsable
// values yield the zero time, which Valid reports as unset.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	t.Time = time.Time{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	if parsed, err := ParseTimestamp(s); err == nil {
		t.Time = parsed
	}
	return nil
}

// MarshalJSON writes RFC 3339 with nanoseconds.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Valid reports whether t is non-nil and set.
func (t *Timestamp) Valid() bool {
	return t != nil && !t.IsZero()
}
