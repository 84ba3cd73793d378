package schedule

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"wayfare-backend/internal/models"
)

func TestGenerateRecommendations(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	t.Run("ShiftLaterPreservesDuration", func(t *testing.T) {
		// Museum just placed 10:00–11:30, dinner 12:00–13:30, 15 min short.
		placed := activityEntry("museum", at(10, 0), 90)
		dinner := activityEntry("dinner", at(12, 0), 90)
		dinnerStart := dinner.Entry.Start()
		info := AnalyzeConflict("museum", "Museum", placed.Entry.Start(), placed.Entry.End(), nil, &dinnerStart, 0, 45)

		recs := GenerateRecommendations(info, []models.ScheduledEntry{placed, dinner}, "museum", nil)
		var shift *models.Recommendation
		for i := range recs {
			if recs[i].ID == "shift-later-dinner" {
				shift = &recs[i]
			}
		}
		if shift == nil {
			t.Fatalf("Expected a shift-later-dinner recommendation, got %v", recIDs(recs))
		}
		if len(shift.Changes) != 1 {
			t.Fatalf("Expected 1 change, got %d", len(shift.Changes))
		}
		change := shift.Changes[0]
		if change.NewStart != at(12, 15).Unix() {
			t.Errorf("Expected new start 12:15, got %v", time.Unix(change.NewStart, 0).UTC())
		}
		origLen := dinner.Entry.EndTime - dinner.Entry.StartTime
		if change.NewEnd-change.NewStart != origLen {
			t.Errorf("Shift must preserve duration: expected %d seconds, got %d", origLen, change.NewEnd-change.NewStart)
		}
	})

	t.Run("ShiftEarlierForPriorEntry", func(t *testing.T) {
		breakfast := activityEntry("breakfast", at(8, 0), 60)
		placed := activityEntry("museum", at(10, 0), 90)
		prevEnd := breakfast.Entry.End()
		info := AnalyzeConflict("museum", "Museum", placed.Entry.Start(), placed.Entry.End(), &prevEnd, nil, 80, 0)
		if info.DiscrepancyMin != 20 {
			t.Fatalf("Expected discrepancy 20, got %d", info.DiscrepancyMin)
		}

		recs := GenerateRecommendations(info, []models.ScheduledEntry{breakfast, placed}, "museum", nil)
		var shift *models.Recommendation
		for i := range recs {
			if recs[i].ID == "shift-earlier-breakfast" {
				shift = &recs[i]
			}
		}
		if shift == nil {
			t.Fatalf("Expected shift-earlier-breakfast, got %v", recIDs(recs))
		}
		if shift.Changes[0].NewStart != at(7, 40).Unix() || shift.Changes[0].NewEnd != at(8, 40).Unix() {
			t.Errorf("Expected 07:40–08:40, got %v–%v",
				time.Unix(shift.Changes[0].NewStart, 0).UTC(), time.Unix(shift.Changes[0].NewEnd, 0).UTC())
		}
	})

	t.Run("NoRecommendationsWhenFits", func(t *testing.T) {
		placed := activityEntry("museum", at(10, 0), 90)
		other := activityEntry("dinner", at(13, 0), 90)
		info := models.ConflictInfo{EntryID: "museum", DiscrepancyMin: 0}
		if recs := GenerateRecommendations(info, []models.ScheduledEntry{placed, other}, "museum", nil); len(recs) != 0 {
			t.Errorf("Expected no recommendations for a fitting placement, got %d", len(recs))
		}
		info.DiscrepancyMin = -5
		if recs := GenerateRecommendations(info, []models.ScheduledEntry{placed, other}, "museum", nil); len(recs) != 0 {
			t.Errorf("Expected no recommendations for negative discrepancy, got %d", len(recs))
		}
	})

	t.Run("LockedEntriesNeverCandidates", func(t *testing.T) {
		placed := activityEntry("museum", at(10, 0), 90)
		locked := activityEntry("dinner", at(12, 0), 90)
		locked.Entry.Locked = true
		info := models.ConflictInfo{EntryID: "museum", DiscrepancyMin: 30}

		recs := GenerateRecommendations(info, []models.ScheduledEntry{placed, locked}, "museum", nil)
		for _, r := range recs {
			if strings.HasSuffix(r.ID, "-dinner") {
				t.Errorf("Locked entry appeared in recommendation %s", r.ID)
			}
		}
		if len(recs) != 0 {
			t.Errorf("Expected no recommendations with only locked candidates, got %v", recIDs(recs))
		}
	})

	t.Run("ShortenOnlyAboveRemainderGuard", func(t *testing.T) {
		placed := activityEntry("museum", at(10, 0), 90)
		short := activityEntry("coffee", at(12, 0), 25) // 25 <= 15+15, no shorten
		long := activityEntry("walk", at(13, 0), 45)    // 45 > 30, shorten allowed
		info := models.ConflictInfo{EntryID: "museum", DiscrepancyMin: 15}

		recs := GenerateRecommendations(info, []models.ScheduledEntry{placed, short, long}, "museum", nil)
		ids := recIDs(recs)
		for _, id := range ids {
			if id == "shorten-coffee" {
				t.Error("Shorten proposed for an entry that would drop below the 15 min remainder")
			}
		}
		var shorten *models.Recommendation
		for i := range recs {
			if recs[i].ID == "shorten-walk" {
				shorten = &recs[i]
			}
		}
		if shorten == nil {
			t.Fatalf("Expected shorten-walk, got %v", ids)
		}
		if shorten.Changes[0].NewStart != long.Entry.StartTime {
			t.Error("Shorten must not move the start time")
		}
		if shorten.Changes[0].NewEnd != at(13, 30).Unix() {
			t.Errorf("Expected new end 13:30, got %v", time.Unix(shorten.Changes[0].NewEnd, 0).UTC())
		}
	})

	t.Run("SkipCarriesEmptyChangeList", func(t *testing.T) {
		placed := activityEntry("museum", at(10, 0), 90)
		dinner := activityEntry("dinner", at(12, 0), 20)
		info := models.ConflictInfo{EntryID: "museum", DiscrepancyMin: 15}

		recs := GenerateRecommendations(info, []models.ScheduledEntry{placed, dinner}, "museum", nil)
		var skip *models.Recommendation
		for i := range recs {
			if recs[i].ID == "skip-dinner" {
				skip = &recs[i]
			}
		}
		if skip == nil {
			t.Fatalf("Expected skip-dinner, got %v", recIDs(recs))
		}
		if skip.Changes == nil || len(skip.Changes) != 0 {
			t.Errorf("Skip must carry an empty (non-nil) change list, got %v", skip.Changes)
		}
	})

	t.Run("CappedAtFive", func(t *testing.T) {
		placed := activityEntry("museum", at(8, 0), 30)
		entries := []models.ScheduledEntry{placed}
		for i := 0; i < 4; i++ {
			entries = append(entries, activityEntry(fmt.Sprintf("e%d", i), at(10+i, 0), 50))
		}
		info := models.ConflictInfo{EntryID: "museum", DiscrepancyMin: 10}

		recs := GenerateRecommendations(info, entries, "museum", nil)
		if len(recs) != 5 {
			t.Errorf("Expected exactly 5 recommendations, got %d: %v", len(recs), recIDs(recs))
		}
		// First candidate's proposals come first: shift, shorten, skip for e0.
		if recs[0].ID != "shift-later-e0" || recs[1].ID != "shorten-e0" || recs[2].ID != "skip-e0" {
			t.Errorf("Expected candidate-order output, got %v", recIDs(recs))
		}
	})
}

func recIDs(recs []models.Recommendation) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids
}
