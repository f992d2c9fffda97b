// Package schedule parses HHMM-HHMM time ranges and evaluates day/time
// membership, including ranges that cross midnight.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/barricade-app/barricade/internal/timeutil"
)

// Range is a parsed time range expressed in minutes since midnight.
// End may be 1440, meaning midnight at the end of the day.
type Range struct {
	StartMinutes  int
	EndMinutes    int
	WrapsMidnight bool
}

var rangeFormat = regexp.MustCompile(`^(\d{2})(\d{2})-(\d{2})(\d{2})$`)

// ParseRanges splits a comma-separated list of HHMM-HHMM entries.
// Malformed entries produce a validation error string and are dropped;
// they are not fatal to the others.
func ParseRanges(s string) ([]Range, []string) {
	var (
		ranges []Range
		errs   []string
	)

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := rangeFormat.FindStringSubmatch(entry)
		if parts == nil {
			errs = append(
				errs,
				"Invalid time range '"+entry+"' (expected HHMM-HHMM).",
			)

			continue
		}

		start, startOK := toMinutes(parts[1], parts[2], false)
		end, endOK := toMinutes(parts[3], parts[4], true)

		if !startOK || !endOK || start == end {
			errs = append(errs, "Invalid time value in '"+entry+"'.")
			continue
		}

		ranges = append(ranges, Range{
			StartMinutes:  start,
			EndMinutes:    end,
			WrapsMidnight: end < start && end != timeutil.MinutesInADay,
		})
	}

	return ranges, errs
}

// toMinutes converts HH and MM digit pairs to minutes since midnight.
// An end value of 2400 is accepted and means midnight.
func toMinutes(hh, mm string, isEnd bool) (int, bool) {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)

	if m > 59 {
		return 0, false
	}

	if h > 23 {
		if !(isEnd && h == 24 && m == 0) {
			return 0, false
		}
	}

	return h*60 + m, true
}

// IsActive reports whether any range is active at the given time and,
// if so, the earliest moment at which all currently-active ranges have
// ended.
//
// A range that does not wrap midnight is active when today's weekday
// flag is set and the minute-of-day falls in [start, end). A wrapping
// range is active either when yesterday's flag is set and the
// minute-of-day is before its end, or when today's flag is set and the
// minute-of-day is at or past its start.
func IsActive(
	now time.Time,
	days []bool,
	ranges []Range,
) (bool, time.Time) {
	if len(days) != 7 {
		return false, time.Time{}
	}

	var (
		active   bool
		boundary time.Time
	)

	minute := timeutil.MinuteOfDay(now)
	today := int(now.Weekday())
	yesterday := (today + 6) % 7

	for _, r := range ranges {
		var end time.Time

		switch {
		case !r.WrapsMidnight:
			if days[today] && minute >= r.StartMinutes &&
				minute < r.EndMinutes {
				end = timeutil.AtMinute(now, r.EndMinutes)
			}
		case days[yesterday] && minute < r.EndMinutes:
			end = timeutil.AtMinute(now, r.EndMinutes)
		case days[today] && minute >= r.StartMinutes:
			end = timeutil.AtMinute(now.AddDate(0, 0, 1), r.EndMinutes)
		}

		if end.IsZero() {
			continue
		}

		if !active || end.Before(boundary) {
			boundary = end
		}

		active = true
	}

	return active, boundary
}
