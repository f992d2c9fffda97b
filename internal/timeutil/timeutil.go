// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import "time"

const (
	SecondsInADay  = 24 * 60 * 60
	SecondsInAWeek = 7 * SecondsInADay
	MinutesInADay  = 24 * 60
)

type Period string

const (
	PeriodAllTime   Period = "all-time"
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	Period7Days     Period = "7days"
	Period14Days    Period = "14days"
	Period30Days    Period = "30days"
)

var Range = map[Period]int{
	PeriodAllTime:   0,
	PeriodToday:     0,
	PeriodYesterday: -1,
	Period7Days:     -6,
	Period14Days:    -13,
	Period30Days:    -29,
}

var PeriodCollection = []Period{
	PeriodAllTime,
	PeriodToday,
	PeriodYesterday,
	Period7Days,
	Period14Days,
	Period30Days,
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// RoundToEnd resets the given time to the end of the day.
func RoundToEnd(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		23,
		59,
		59,
		0,
		t.Location(),
	)
}

// WeekStart returns local midnight of the most recent Sunday.
func WeekStart(t time.Time) time.Time {
	return RoundToStart(t.AddDate(0, 0, -int(t.Weekday())))
}

// MinuteOfDay returns the number of minutes elapsed since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// AtMinute returns the given day's local time at the specified
// minute-of-day. Minutes beyond the end of the day roll over into the
// following day.
func AtMinute(day time.Time, minute int) time.Time {
	start := RoundToStart(day)

	return start.Add(time.Duration(minute) * time.Minute)
}

// ToKey converts a time value to a database key for Bolt. The
// fractional second is fixed width so that keys compare
// chronologically byte-for-byte.
func ToKey(t time.Time) []byte {
	return []byte(t.Format("2006-01-02T15:04:05.000000000Z07:00"))
}
