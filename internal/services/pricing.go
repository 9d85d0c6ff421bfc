package services

import (
	"time"

	"motorent/internal/domain/models"
)

// ComputePrice charges whole days at the daily rate and the remainder at the
// hourly rate, rounded up to the hour. A partial day never costs more than a
// full one.
func ComputePrice(bike models.Bike, start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}

	days := int64(d / (24 * time.Hour))
	rem := d - time.Duration(days)*24*time.Hour
	hours := int64(rem / time.Hour)
	if rem%time.Hour != 0 {
		hours++
	}

	daily := bike.DailyPrice
	if daily <= 0 {
		daily = 24 * bike.HourlyPrice
	}

	partial := hours * bike.HourlyPrice
	if partial > daily {
		partial = daily
	}
	return days*daily + partial
}
