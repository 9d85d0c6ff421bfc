package utils

import (
	"time"
)

const (
	layoutDate        = "2006-01-02"
	layoutDisplayTime = "2006/01/02 15:04"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatDate formats t as YYYY-MM-DD in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(layoutDate)
}

// FormatDisplay formats t the way the dashboards show it ("2026/10/20 10:00").
func FormatDisplay(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return in(t, loc).Format(layoutDisplayTime)
}

func in(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
