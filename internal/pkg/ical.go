package pkg

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// CalendarItem is one entry of an iCalendar feed. Dates are YYYY-MM-DD and
// times HH:MM:SS with an optional fraction and trailing Z, both UTC.
type CalendarItem struct {
	ID          uint64
	Title       string
	Location    string
	Link        string
	Description string
	StartDate   *string
	EndDate     *string
	StartTime   *string
	EndTime     *string
}

// BuildCalendar renders items as a VCALENDAR. Items without a start date
// cannot be placed and are skipped; items without a start time become
// all-day entries.
func BuildCalendar(domain string, items []CalendarItem, stamp time.Time) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//DormDigest//Events//EN")

	for _, it := range items {
		if it.StartDate == nil {
			continue
		}
		start, err := time.ParseInLocation("2006-01-02", *it.StartDate, time.UTC)
		if err != nil {
			return "", fmt.Errorf("event %d start date: %w", it.ID, err)
		}
		end := start
		if it.EndDate != nil {
			if end, err = time.ParseInLocation("2006-01-02", *it.EndDate, time.UTC); err != nil {
				return "", fmt.Errorf("event %d end date: %w", it.ID, err)
			}
		}

		ev := cal.AddEvent(fmt.Sprintf("event-%d@%s", it.ID, domain))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetSummary(it.Title)
		if it.Location != "" {
			ev.SetLocation(it.Location)
		}
		if it.Description != "" {
			ev.SetDescription(it.Description)
		}
		if it.Link != "" {
			ev.SetURL(it.Link)
		}

		if it.StartTime == nil {
			ev.SetAllDayStartAt(start)
			ev.SetAllDayEndAt(end.AddDate(0, 0, 1))
			continue
		}
		startAt, err := atClock(start, *it.StartTime)
		if err != nil {
			return "", fmt.Errorf("event %d start time: %w", it.ID, err)
		}
		ev.SetStartAt(startAt)
		if it.EndTime != nil {
			endAt, err := atClock(end, *it.EndTime)
			if err != nil {
				return "", fmt.Errorf("event %d end time: %w", it.ID, err)
			}
			ev.SetEndAt(endAt)
		}
	}
	return cal.Serialize(), nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	c, err := time.Parse("15:04:05Z07:00", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), c.Nanosecond(), time.UTC), nil
}
