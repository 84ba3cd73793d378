package schedule

import (
	"testing"
	"time"

	"wayfare-backend/internal/models"
)

func linkedEntry(id, flightID string, role models.LinkRole, start, end time.Time) models.Entry {
	r := string(role)
	return models.Entry{
		ID:             id,
		TripID:         "trip-1",
		StartTime:      start.Unix(),
		EndTime:        end.Unix(),
		Scheduled:      true,
		LinkedFlightID: &flightID,
		LinkRole:       &r,
	}
}

func TestCheckinCommands(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	checkin := linkedEntry("ci", "flight", models.LinkRoleCheckin, at(8, 0), at(10, 0))

	t.Run("FollowsNewDeparture", func(t *testing.T) {
		// Flight moved from 10:00 to 11:00; checkin must become 09:00–11:00.
		cmds := CheckinCommands("flight", at(11, 0), 2, []models.Entry{checkin})
		if len(cmds) != 1 {
			t.Fatalf("Expected 1 command, got %d", len(cmds))
		}
		if cmds[0].NewStart != at(9, 0).Unix() || cmds[0].NewEnd != at(11, 0).Unix() {
			t.Errorf("Expected 09:00–11:00, got %v–%v",
				time.Unix(cmds[0].NewStart, 0).UTC(), time.Unix(cmds[0].NewEnd, 0).UTC())
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		first := CheckinCommands("flight", at(11, 0), 2, []models.Entry{checkin})
		second := CheckinCommands("flight", at(11, 0), 2, []models.Entry{checkin})
		if first[0] != second[0] {
			t.Errorf("Reapplying the cascade changed the result: %v vs %v", first[0], second[0])
		}
	})

	t.Run("SkipsLocked", func(t *testing.T) {
		locked := checkin
		locked.Locked = true
		if cmds := CheckinCommands("flight", at(11, 0), 2, []models.Entry{locked}); len(cmds) != 0 {
			t.Errorf("Expected locked checkin to be untouched, got %d commands", len(cmds))
		}
	})

	t.Run("IgnoresOtherFlights", func(t *testing.T) {
		other := linkedEntry("ci2", "other-flight", models.LinkRoleCheckin, at(6, 0), at(8, 0))
		if cmds := CheckinCommands("flight", at(11, 0), 2, []models.Entry{other}); len(cmds) != 0 {
			t.Errorf("Expected no commands for another flight's checkin, got %d", len(cmds))
		}
	})
}

func TestCheckoutCommands(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	checkout := linkedEntry("co", "flight", models.LinkRoleCheckout, at(12, 30), at(13, 15))
	cmds := CheckoutCommands("flight", at(13, 0), 45, []models.Entry{checkout})
	if len(cmds) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(cmds))
	}
	if cmds[0].NewStart != at(13, 0).Unix() || cmds[0].NewEnd != at(13, 45).Unix() {
		t.Errorf("Expected 13:00–13:45, got %v–%v",
			time.Unix(cmds[0].NewStart, 0).UTC(), time.Unix(cmds[0].NewEnd, 0).UTC())
	}
}

func TestDurationChangeCommands(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	flight := models.Entry{ID: "flight", StartTime: at(10, 0).Unix(), EndTime: at(12, 30).Unix(), Scheduled: true}
	linked := []models.Entry{
		linkedEntry("ci", "flight", models.LinkRoleCheckin, at(8, 0), at(10, 0)),
		linkedEntry("co", "flight", models.LinkRoleCheckout, at(12, 30), at(13, 0)),
	}

	// User bumps checkin to 3h and checkout to 60min; flight times unchanged.
	cmds := DurationChangeCommands(flight, 3, 60, linked)
	if len(cmds) != 2 {
		t.Fatalf("Expected 2 commands, got %d", len(cmds))
	}
	if cmds[0].NewStart != at(7, 0).Unix() || cmds[0].NewEnd != at(10, 0).Unix() {
		t.Errorf("Expected checkin 07:00–10:00, got %v–%v",
			time.Unix(cmds[0].NewStart, 0).UTC(), time.Unix(cmds[0].NewEnd, 0).UTC())
	}
	if cmds[1].NewStart != at(12, 30).Unix() || cmds[1].NewEnd != at(13, 30).Unix() {
		t.Errorf("Expected checkout 12:30–13:30, got %v–%v",
			time.Unix(cmds[1].NewStart, 0).UTC(), time.Unix(cmds[1].NewEnd, 0).UTC())
	}
}

func TestTransferShiftCommands(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	nextID := "dinner"
	transfer := models.Entry{
		ID:        "transfer",
		StartTime: at(10, 0).Unix(),
		EndTime:   at(10, 10).Unix(),
		ToEntryID: &nextID,
	}
	next := models.Entry{ID: "dinner", StartTime: at(10, 10).Unix(), EndTime: at(11, 10).Unix()}

	t.Run("PullsDownstreamEntry", func(t *testing.T) {
		// Mode switch stretched the transfer to end 10:25.
		cmds := TransferShiftCommands(transfer, at(10, 25), &next)
		if len(cmds) != 1 {
			t.Fatalf("Expected 1 command, got %d", len(cmds))
		}
		if cmds[0].NewStart != at(10, 25).Unix() || cmds[0].NewEnd != at(11, 25).Unix() {
			t.Errorf("Expected 10:25–11:25, got %v–%v",
				time.Unix(cmds[0].NewStart, 0).UTC(), time.Unix(cmds[0].NewEnd, 0).UTC())
		}
	})

	t.Run("SkipsLockedDownstream", func(t *testing.T) {
		locked := next
		locked.Locked = true
		if cmds := TransferShiftCommands(transfer, at(10, 25), &locked); len(cmds) != 0 {
			t.Errorf("Expected locked downstream entry to stay put, got %d commands", len(cmds))
		}
	})

	t.Run("NoLinkNoCommands", func(t *testing.T) {
		unlinked := transfer
		unlinked.ToEntryID = nil
		if cmds := TransferShiftCommands(unlinked, at(10, 25), &next); len(cmds) != 0 {
			t.Errorf("Expected no commands without a to_entry_id link, got %d", len(cmds))
		}
		wrong := next
		wrong.ID = "lunch"
		if cmds := TransferShiftCommands(transfer, at(10, 25), &wrong); len(cmds) != 0 {
			t.Errorf("Expected no commands for a mismatched downstream id, got %d", len(cmds))
		}
	})
}
