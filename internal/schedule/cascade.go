package schedule

import (
	"time"

	"wayfare-backend/internal/models"
)

// CascadeCommand is one derived time edit produced by a cascade. The cascade
// itself is a pure function from an anchor change to a list of writes; the
// caller is responsible for persisting them.
type CascadeCommand struct {
	EntryID  string
	NewStart int64
	NewEnd   int64
}

// CheckinCommands recomputes every check-in block linked to the flight as
// [newStart - checkinHours, newStart]. Locked blocks are left untouched.
// Idempotent: reapplying with the same flight start yields the same interval.
func CheckinCommands(flightID string, newStart time.Time, checkinHours int, linked []models.Entry) []CascadeCommand {
	var cmds []CascadeCommand
	for _, e := range linked {
		if !e.IsLinkedTo(flightID, models.LinkRoleCheckin) || e.Locked {
			continue
		}
		cmds = append(cmds, CascadeCommand{
			EntryID:  e.ID,
			NewStart: newStart.Add(-time.Duration(checkinHours) * time.Hour).Unix(),
			NewEnd:   newStart.Unix(),
		})
	}
	return cmds
}

// CheckoutCommands recomputes every check-out block linked to the flight as
// [newEnd, newEnd + checkoutMinutes]. Locked blocks are left untouched.
func CheckoutCommands(flightID string, newEnd time.Time, checkoutMinutes int, linked []models.Entry) []CascadeCommand {
	var cmds []CascadeCommand
	for _, e := range linked {
		if !e.IsLinkedTo(flightID, models.LinkRoleCheckout) || e.Locked {
			continue
		}
		cmds = append(cmds, CascadeCommand{
			EntryID:  e.ID,
			NewStart: newEnd.Unix(),
			NewEnd:   newEnd.Add(time.Duration(checkoutMinutes) * time.Minute).Unix(),
		})
	}
	return cmds
}

// DurationChangeCommands handles the user editing the checkin/checkout policy
// on the flight option itself: the flight's clock times are unchanged, so the
// blocks recompute against the flight's current boundaries with the new
// durations.
func DurationChangeCommands(flight models.Entry, checkinHours, checkoutMinutes int, linked []models.Entry) []CascadeCommand {
	cmds := CheckinCommands(flight.ID, flight.Start(), checkinHours, linked)
	return append(cmds, CheckoutCommands(flight.ID, flight.End(), checkoutMinutes, linked)...)
}

// TransferShiftCommands pulls the entry downstream of a transfer along when
// the transfer's end moves (e.g. the user switched travel mode): the next
// entry slides so its start stays adjacent to the transfer's new end, keeping
// its own duration. A locked or missing downstream entry yields no commands.
func TransferShiftCommands(transfer models.Entry, newTransferEnd time.Time, next *models.Entry) []CascadeCommand {
	if transfer.ToEntryID == nil || next == nil || next.Locked {
		return nil
	}
	if next.ID != *transfer.ToEntryID {
		return nil
	}
	duration := next.End().Sub(next.Start())
	return []CascadeCommand{{
		EntryID:  next.ID,
		NewStart: newTransferEnd.Unix(),
		NewEnd:   newTransferEnd.Add(duration).Unix(),
	}}
}
