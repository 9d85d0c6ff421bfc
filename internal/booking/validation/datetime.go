package validation

import (
	"strings"
	"time"

	"motorent/internal/utils"
)

var defaultLocation = loadLocation("Asia/Tokyo", 9*60*60)

// zoned layouts carry their own offset; local layouts are read in the caller's location.
var (
	zonedLayouts = []string{time.RFC3339Nano}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
)

// ParseDatetime reads the ISO-8601 forms produced by browsers and the dashboards.
// Zone-less values are interpreted in loc (Asia/Tokyo when nil).
func ParseDatetime(s string, loc *time.Location) (time.Time, error) {
	s = utils.NormalizeInput(s)
	if s == "" {
		return time.Time{}, ErrInvalidDatetime
	}
	if loc == nil {
		loc = defaultLocation
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// "2026-10-20 10:00:00+09:00" shows up in exports from the hosted DB
	if strings.Contains(s, " ") {
		if t, err := time.Parse(time.RFC3339Nano, strings.Replace(s, " ", "T", 1)); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDatetime
}

// LoadLocation resolves name, falling back to a fixed offset when tzdata is missing.
func LoadLocation(name string) *time.Location {
	if strings.TrimSpace(name) == "" {
		return defaultLocation
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return defaultLocation
}

func loadLocation(name string, offset int) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("JST", offset)
}
