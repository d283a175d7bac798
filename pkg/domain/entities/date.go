package entities

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ISODateLayout is the storage and wire format for calendar days
const ISODateLayout = "2006-01-02"

const usDateLayout = "1/2/2006"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Date represents a calendar day. The zero value means "no date".
type Date struct {
	t time.Time
}

// NewDate creates a Date from year, month and day
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar day
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseFlexibleDate accepts YYYY-MM-DD or M/D/YYYY. Empty or unparseable
// input reports false.
func ParseFlexibleDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	if t, err := time.Parse(ISODateLayout, s); err == nil {
		return Date{t: t}, true
	}
	if t, err := time.Parse(usDateLayout, s); err == nil {
		return Date{t: t}, true
	}
	return Date{}, false
}

// IsISODate reports whether s is strictly in YYYY-MM-DD form
func IsISODate(s string) bool {
	return isoDatePattern.MatchString(s)
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns the date at midnight UTC
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) Year() int          { return d.t.Year() }
func (d Date) Month() time.Month  { return d.t.Month() }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }

// AddDays returns the date shifted by n days
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil returns the number of whole days from d to o
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// String returns YYYY-MM-DD, or "" for the zero date
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(ISODateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD" or null
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes null, "" or a flexible date string
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, ok := ParseFlexibleDate(s)
	if !ok {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD or MM/DD/YYYY)", s)
	}
	*d = parsed
	return nil
}
