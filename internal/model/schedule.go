package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"dormdigest/internal/pkg"
)

const dateLayout = "2006-01-02"

// Schedule is the rendered form of the four independent schedule fields.
type Schedule struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

func (e *Event) Schedule() Schedule {
	return Schedule{
		StartDate: FormatDate(e.StartDate),
		EndDate:   FormatDate(e.EndDate),
		StartTime: FormatClock(e.StartTime),
		EndTime:   FormatClock(e.EndTime),
	}
}

// FormatDate renders an ISO-8601 calendar date, or nil when unset.
func FormatDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := time.Time(*d).Format(dateLayout)
	return &s
}

// FormatClock renders an ISO-8601 time of day with a trailing UTC marker,
// or nil when unset. Microseconds appear only when non-zero.
func FormatClock(t *datatypes.Time) *string {
	if t == nil {
		return nil
	}
	d := time.Duration(*t)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	sec := (d % time.Minute) / time.Second
	us := (d % time.Second) / time.Microsecond

	s := fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
	if us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	s += "Z"
	return &s
}

// ParseDate reads YYYY-MM-DD. An empty string is an unset date.
func ParseDate(s string) (*datatypes.Date, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, pkg.Validationf("bad date %q", s)
	}
	d := datatypes.Date(t)
	return &d, nil
}

// ParseClock reads HH:MM or HH:MM:SS[.ffffff] with an optional trailing Z.
// An empty string is an unset time.
func ParseClock(s string) (*datatypes.Time, error) {
	if s == "" {
		return nil, nil
	}
	raw := strings.TrimSuffix(s, "Z")
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		c := datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
		return &c, nil
	}
	return nil, pkg.Validationf("bad time %q", s)
}
