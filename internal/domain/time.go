package domain

import (
	"fmt"
	"strings"
	"time"
)

// LocalTimeLayout is the zone-less ISO-8601 date-time layout used on
// the wire, both for createdAt fields and the from/to query params.
const LocalTimeLayout = "2006-01-02T15:04:05"

// LocalTime is a timestamp serialised without a zone offset.
type LocalTime struct {
	time.Time
}

// NewLocalTime wraps a time.Time.
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: t}
}

// ParseLocalTime parses a zone-less date-time string in server-local time.
func ParseLocalTime(s string) (LocalTime, error) {
	t, err := time.ParseInLocation(LocalTimeLayout, s, time.Local)
	if err != nil {
		return LocalTime{}, fmt.Errorf("invalid date-time %q, expected format %s", s, LocalTimeLayout)
	}
	return LocalTime{Time: t}, nil
}

// MarshalJSON implements json.Marshaler.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(LocalTimeLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// String returns the wire representation.
func (t LocalTime) String() string {
	return t.Format(LocalTimeLayout)
}
