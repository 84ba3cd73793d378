package schedule

import (
	"fmt"
	"time"

	"wayfare-backend/internal/models"
)

const (
	// Presentation cap: the first five proposals in candidate order, not a
	// quality ranking.
	maxRecommendations = 5

	// A shorten proposal must leave at least this many minutes of the
	// candidate's original duration.
	minRemainderMin = 15
)

// GenerateRecommendations proposes ways to reclaim the conflict's discrepancy
// from the day's schedule. Candidates are every entry on the day that is not
// locked and not the entry that was just placed; the conflicted placement
// itself is never adjusted. Returns nil when the placement already fits.
//
// loc controls how clock times render in descriptions; nil means UTC.
func GenerateRecommendations(info models.ConflictInfo, dayEntries []models.ScheduledEntry, placedID string, loc *time.Location) []models.Recommendation {
	if info.DiscrepancyMin <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	var placed *models.Entry
	for i := range dayEntries {
		if dayEntries[i].Entry.ID == placedID {
			placed = &dayEntries[i].Entry
			break
		}
	}

	shift := time.Duration(info.DiscrepancyMin) * time.Minute
	var recs []models.Recommendation
	for i := range dayEntries {
		if len(recs) >= maxRecommendations {
			break
		}
		candidate := dayEntries[i].Entry
		name := dayEntries[i].Option.Name
		if candidate.ID == placedID || candidate.Locked {
			continue
		}

		if placed != nil && candidate.StartTime > placed.StartTime {
			recs = appendRec(recs, models.Recommendation{
				ID:          fmt.Sprintf("shift-later-%s", candidate.ID),
				Label:       fmt.Sprintf("Shift %s %d min later", name, info.DiscrepancyMin),
				Description: shiftDescription(candidate, shift, loc),
				Changes: []models.ScheduleChange{{
					EntryID:  candidate.ID,
					NewStart: candidate.Start().Add(shift).Unix(),
					NewEnd:   candidate.End().Add(shift).Unix(),
				}},
			})
		} else if placed != nil && candidate.StartTime < placed.StartTime {
			recs = appendRec(recs, models.Recommendation{
				ID:          fmt.Sprintf("shift-earlier-%s", candidate.ID),
				Label:       fmt.Sprintf("Shift %s %d min earlier", name, info.DiscrepancyMin),
				Description: shiftDescription(candidate, -shift, loc),
				Changes: []models.ScheduleChange{{
					EntryID:  candidate.ID,
					NewStart: candidate.Start().Add(-shift).Unix(),
					NewEnd:   candidate.End().Add(-shift).Unix(),
				}},
			})
		}
		if len(recs) >= maxRecommendations {
			break
		}

		if candidate.DurationMinutes() > float64(info.DiscrepancyMin+minRemainderMin) {
			newEnd := candidate.End().Add(-shift)
			recs = appendRec(recs, models.Recommendation{
				ID:    fmt.Sprintf("shorten-%s", candidate.ID),
				Label: fmt.Sprintf("Shorten %s by %d min", name, info.DiscrepancyMin),
				Description: fmt.Sprintf("Ends %s → %s",
					candidate.End().In(loc).Format("15:04"), newEnd.In(loc).Format("15:04")),
				Changes: []models.ScheduleChange{{
					EntryID:  candidate.ID,
					NewStart: candidate.StartTime,
					NewEnd:   newEnd.Unix(),
				}},
			})
		}
		if len(recs) >= maxRecommendations {
			break
		}

		// Skipping always resolves the conflict; the empty change list tells
		// the caller to unschedule the entry, not to apply a no-op edit.
		recs = appendRec(recs, models.Recommendation{
			ID:          fmt.Sprintf("skip-%s", candidate.ID),
			Label:       fmt.Sprintf("Skip %s", name),
			Description: fmt.Sprintf("Move %s back to the ideas backlog", name),
			Changes:     []models.ScheduleChange{},
		})
	}
	return recs
}

func appendRec(recs []models.Recommendation, r models.Recommendation) []models.Recommendation {
	if len(recs) >= maxRecommendations {
		return recs
	}
	return append(recs, r)
}

func shiftDescription(e models.Entry, delta time.Duration, loc *time.Location) string {
	return fmt.Sprintf("%s–%s → %s–%s",
		e.Start().In(loc).Format("15:04"), e.End().In(loc).Format("15:04"),
		e.Start().Add(delta).In(loc).Format("15:04"), e.End().Add(delta).In(loc).Format("15:04"))
}
