package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"wayfare-backend/internal/models"
)

// Validation errors for temporal inputs. A bad zone or time string must never
// produce a silently-wrong schedule, so these always surface to the caller.
var (
	ErrInvalidTimeZone   = errors.New("invalid time zone")
	ErrInvalidTimeFormat = errors.New("invalid time format")
)

const dayFormat = "2006-01-02"

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// LocalToUTC interprets a wall-clock date+time ("2006-01-02", "15:04") as
// occurring in the given IANA zone and returns the equivalent UTC instant.
// DST transitions and non-whole-hour offsets are resolved at the given date.
func LocalToUTC(date, clock, timezone string) (time.Time, error) {
	if !clockPattern.MatchString(clock) {
		return time.Time{}, fmt.Errorf("%w: %q is not a 24-hour HH:MM time", ErrInvalidTimeFormat, clock)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeZone, timezone)
	}
	t, err := time.ParseInLocation(dayFormat+" 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a valid date", ErrInvalidTimeFormat, date)
	}
	return t.UTC(), nil
}

// UTCToLocal is the inverse of LocalToUTC: it renders an instant as the
// wall-clock date and time of the given zone.
func UTCToLocal(t time.Time, timezone string) (date, clock string, err error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTimeZone, timezone)
	}
	local := t.In(loc)
	return local.Format(dayFormat), local.Format("15:04"), nil
}

// GapMinutes returns the minutes between the end of one interval and the
// start of the next. Negative when the intervals overlap.
func GapMinutes(earlierEnd, laterStart time.Time) float64 {
	return laterStart.Sub(earlierEnd).Minutes()
}

// BuildDayTimezoneMap derives the effective time zone for each calendar day
// between firstDay and lastDay (inclusive, "2006-01-02"). The zone starts at
// the trip's home zone; a flight's own day keeps the zone it departed in, and
// every day after it uses the flight's arrival zone, until the next flight.
//
// This is a pure fold over the flight list — no shared state between calls.
func BuildDayTimezoneMap(flights []models.ScheduledEntry, homeTz, firstDay, lastDay string) (map[string]string, error) {
	if _, err := time.LoadLocation(homeTz); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeZone, homeTz)
	}
	first, err := time.Parse(dayFormat, firstDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid date", ErrInvalidTimeFormat, firstDay)
	}
	last, err := time.Parse(dayFormat, lastDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid date", ErrInvalidTimeFormat, lastDay)
	}

	ordered := make([]models.ScheduledEntry, len(flights))
	copy(ordered, flights)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Entry.StartTime < ordered[j].Entry.StartTime
	})

	// Day on which each arrival zone takes effect: the day after the flight's
	// own day, where the flight's day is read in its departure zone.
	switches := make(map[string]string)
	for _, f := range ordered {
		if f.Option.ArrivalTimezone == nil {
			continue
		}
		depTz := homeTz
		if f.Option.DepartureTimezone != nil {
			depTz = *f.Option.DepartureTimezone
		}
		flightDay, _, err := UTCToLocal(f.Entry.Start(), depTz)
		if err != nil {
			return nil, err
		}
		d, err := time.Parse(dayFormat, flightDay)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid date", ErrInvalidTimeFormat, flightDay)
		}
		switches[d.AddDate(0, 0, 1).Format(dayFormat)] = *f.Option.ArrivalTimezone
	}

	zones := make(map[string]string)
	current := homeTz
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		day := d.Format(dayFormat)
		if tz, ok := switches[day]; ok {
			current = tz
		}
		zones[day] = current
	}
	return zones, nil
}

// DayBounds returns the UTC instants bounding a local calendar day in the
// given zone. DST days are naturally 23 or 25 hours long.
func DayBounds(day, timezone string) (start, end time.Time, err error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeZone, timezone)
	}
	d, err := time.ParseInLocation(dayFormat, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q is not a valid date", ErrInvalidTimeFormat, day)
	}
	return d.UTC(), d.AddDate(0, 0, 1).UTC(), nil
}

// PartitionByDay buckets scheduled entries into calendar days using the
// per-day effective time zone map. Entries falling outside the mapped days
// are dropped. At a zone switch the UTC windows of consecutive local days can
// overlap, so days are walked chronologically and each entry is claimed by
// the first day whose window contains its start — an entry lands in exactly
// one bucket.
func PartitionByDay(entries []models.ScheduledEntry, dayZones map[string]string) (map[string][]models.ScheduledEntry, error) {
	buckets := make(map[string][]models.ScheduledEntry)
	claimed := make(map[string]bool, len(entries))
	for _, day := range SortedDays(dayZones) {
		start, end, err := DayBounds(day, dayZones[day])
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if claimed[e.Entry.ID] {
				continue
			}
			s := e.Entry.Start()
			if !s.Before(start) && s.Before(end) {
				buckets[day] = append(buckets[day], e)
				claimed[e.Entry.ID] = true
			}
		}
	}
	for day := range buckets {
		sort.Slice(buckets[day], func(i, j int) bool {
			return buckets[day][i].Entry.StartTime < buckets[day][j].Entry.StartTime
		})
	}
	return buckets, nil
}

// SortedDays returns the keys of a day map in chronological order.
func SortedDays(dayZones map[string]string) []string {
	days := make([]string, 0, len(dayZones))
	for d := range dayZones {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}
