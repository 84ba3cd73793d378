package schedule

import (
	"errors"
	"testing"
	"time"

	"wayfare-backend/internal/models"
)

func TestLocalToUTC(t *testing.T) {
	t.Run("BSTOffset", func(t *testing.T) {
		got, err := LocalToUTC("2026-07-01", "12:00", "Europe/London")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		want := time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("NonWholeHourOffset", func(t *testing.T) {
		got, err := LocalToUTC("2026-02-10", "12:00", "Asia/Kathmandu")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		want := time.Date(2026, 2, 10, 6, 15, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("WinterVsSummer", func(t *testing.T) {
		winter, err := LocalToUTC("2026-01-15", "09:00", "Europe/London")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		summer, err := LocalToUTC("2026-07-15", "09:00", "Europe/London")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if winter.Hour() != 9 || summer.Hour() != 8 {
			t.Errorf("Expected 09:00 UTC in winter and 08:00 UTC in summer, got %v and %v", winter, summer)
		}
	})

	t.Run("InvalidZone", func(t *testing.T) {
		_, err := LocalToUTC("2026-07-01", "12:00", "Mars/Olympus")
		if !errors.Is(err, ErrInvalidTimeZone) {
			t.Errorf("Expected ErrInvalidTimeZone, got %v", err)
		}
	})

	t.Run("InvalidTimeFormat", func(t *testing.T) {
		for _, clock := range []string{"9:00", "24:00", "12:60", "noon", ""} {
			_, err := LocalToUTC("2026-07-01", clock, "Europe/London")
			if !errors.Is(err, ErrInvalidTimeFormat) {
				t.Errorf("Expected ErrInvalidTimeFormat for %q, got %v", clock, err)
			}
		}
	})
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		date, clock, zone string
	}{
		{"2026-06-15", "09:30", "Europe/London"},
		{"2026-01-15", "23:45", "America/New_York"},
		{"2026-03-29", "12:00", "Europe/Amsterdam"}, // EU DST switch day
		{"2026-05-01", "06:15", "Asia/Kathmandu"},
		{"2026-11-01", "15:00", "Australia/Sydney"},
	}
	for _, c := range cases {
		instant, err := LocalToUTC(c.date, c.clock, c.zone)
		if err != nil {
			t.Fatalf("LocalToUTC(%s %s %s): %v", c.date, c.clock, c.zone, err)
		}
		date, clock, err := UTCToLocal(instant, c.zone)
		if err != nil {
			t.Fatalf("UTCToLocal(%v, %s): %v", instant, c.zone, err)
		}
		if date != c.date || clock != c.clock {
			t.Errorf("Round trip in %s: expected %s %s, got %s %s", c.zone, c.date, c.clock, date, clock)
		}
	}
}

func TestGapMinutes(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Positive", func(t *testing.T) {
		if got := GapMinutes(base, base.Add(30*time.Minute)); got != 30 {
			t.Errorf("Expected 30, got %v", got)
		}
	})

	t.Run("NegativeOnOverlap", func(t *testing.T) {
		if got := GapMinutes(base, base.Add(-10*time.Minute)); got != -10 {
			t.Errorf("Expected -10, got %v", got)
		}
	})

	t.Run("Monotonic", func(t *testing.T) {
		start := base.Add(time.Hour)
		prev := GapMinutes(base, start)
		for i := 1; i <= 5; i++ {
			got := GapMinutes(base.Add(time.Duration(i)*10*time.Minute), start)
			if got >= prev {
				t.Errorf("Expected gap to decrease as earlierEnd grows, got %v after %v", got, prev)
			}
			prev = got
		}
	})
}

func flightEntry(id string, start time.Time, durationMin int, depTz, arrTz string) models.ScheduledEntry {
	return models.ScheduledEntry{
		Entry: models.Entry{
			ID:        id,
			TripID:    "trip-1",
			StartTime: start.Unix(),
			EndTime:   start.Add(time.Duration(durationMin) * time.Minute).Unix(),
			Scheduled: true,
		},
		Option: models.EntryOption{
			EntryID:           id,
			Name:              "Flight " + id,
			Category:          models.CategoryFlight,
			DepartureTimezone: &depTz,
			ArrivalTimezone:   &arrTz,
		},
	}
}

func TestBuildDayTimezoneMap(t *testing.T) {
	// Departs London 10:00 local on May 2nd.
	dep, err := LocalToUTC("2026-05-02", "10:00", "Europe/London")
	if err != nil {
		t.Fatal(err)
	}
	flights := []models.ScheduledEntry{
		flightEntry("f1", dep, 90, "Europe/London", "Europe/Amsterdam"),
	}

	zones, err := BuildDayTimezoneMap(flights, "Europe/London", "2026-05-01", "2026-05-04")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := map[string]string{
		"2026-05-01": "Europe/London",
		"2026-05-02": "Europe/London", // flight day keeps the departure zone
		"2026-05-03": "Europe/Amsterdam",
		"2026-05-04": "Europe/Amsterdam",
	}
	for day, tz := range want {
		if zones[day] != tz {
			t.Errorf("Day %s: expected %s, got %s", day, tz, zones[day])
		}
	}
}

func TestBuildDayTimezoneMapNoFlights(t *testing.T) {
	zones, err := BuildDayTimezoneMap(nil, "Europe/London", "2026-05-01", "2026-05-03")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for day, tz := range zones {
		if tz != "Europe/London" {
			t.Errorf("Day %s: expected home zone, got %s", day, tz)
		}
	}
	if len(zones) != 3 {
		t.Errorf("Expected 3 days, got %d", len(zones))
	}
}

func TestBuildDayTimezoneMapInvalidHomeZone(t *testing.T) {
	_, err := BuildDayTimezoneMap(nil, "Not/AZone", "2026-05-01", "2026-05-02")
	if !errors.Is(err, ErrInvalidTimeZone) {
		t.Errorf("Expected ErrInvalidTimeZone, got %v", err)
	}
}

func TestPartitionByDay(t *testing.T) {
	morning, _ := LocalToUTC("2026-05-01", "09:00", "Europe/London")
	evening, _ := LocalToUTC("2026-05-01", "19:00", "Europe/London")
	nextDay, _ := LocalToUTC("2026-05-02", "09:00", "Europe/London")

	entries := []models.ScheduledEntry{
		activityEntry("e2", evening, 60),
		activityEntry("e1", morning, 60),
		activityEntry("e3", nextDay, 60),
	}
	zones := map[string]string{
		"2026-05-01": "Europe/London",
		"2026-05-02": "Europe/London",
	}

	buckets, err := PartitionByDay(entries, zones)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	day1 := buckets["2026-05-01"]
	if len(day1) != 2 {
		t.Fatalf("Expected 2 entries on day 1, got %d", len(day1))
	}
	if day1[0].Entry.ID != "e1" || day1[1].Entry.ID != "e2" {
		t.Errorf("Expected day entries sorted by start, got %s then %s", day1[0].Entry.ID, day1[1].Entry.ID)
	}
	if len(buckets["2026-05-02"]) != 1 {
		t.Errorf("Expected 1 entry on day 2, got %d", len(buckets["2026-05-02"]))
	}
}

func TestPartitionByDayZoneSwitchOverlap(t *testing.T) {
	// Moving east, consecutive local days overlap in UTC: London's May 2nd
	// runs until 23:00 UTC while Amsterdam's May 3rd already starts at
	// 22:00 UTC. An entry inside that hour must land in exactly one bucket.
	zones := map[string]string{
		"2026-05-02": "Europe/London",
		"2026-05-03": "Europe/Amsterdam",
	}
	inOverlap := time.Date(2026, 5, 2, 22, 30, 0, 0, time.UTC)
	entries := []models.ScheduledEntry{
		activityEntry("x", inOverlap, 15),
	}

	buckets, err := PartitionByDay(entries, zones)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	total := 0
	for day, dayEntries := range buckets {
		for _, e := range dayEntries {
			if e.Entry.ID == "x" {
				total++
				if day != "2026-05-02" {
					t.Errorf("Entry claimed by %s, expected the earlier day 2026-05-02", day)
				}
			}
		}
	}
	if total != 1 {
		t.Errorf("Entry appears in %d buckets, expected exactly 1", total)
	}
}

func activityEntry(id string, start time.Time, durationMin int) models.ScheduledEntry {
	return models.ScheduledEntry{
		Entry: models.Entry{
			ID:        id,
			TripID:    "trip-1",
			StartTime: start.Unix(),
			EndTime:   start.Add(time.Duration(durationMin) * time.Minute).Unix(),
			Scheduled: true,
		},
		Option: models.EntryOption{
			EntryID:  id,
			Name:     "Activity " + id,
			Category: "sightseeing",
		},
	}
}
