package schedule

import (
	"math"
	"time"

	"wayfare-backend/internal/models"
)

// AnalyzeConflict computes how much schedule adjustment a placed entry needs,
// given its immediate neighbors and the travel minutes required to reach and
// leave it. A nil neighbor means an unbounded gap on that side; a negative
// or zero discrepancy means the placement fits as-is.
func AnalyzeConflict(entryID, entryName string, placedStart, placedEnd time.Time, prevEnd, nextStart *time.Time, travelBeforeMin, travelAfterMin float64) models.ConflictInfo {
	info := models.ConflictInfo{
		EntryID:         entryID,
		EntryName:       entryName,
		TravelBeforeMin: travelBeforeMin,
		TravelAfterMin:  travelAfterMin,
	}

	prevGap := math.Inf(1)
	if prevEnd != nil {
		prevGap = GapMinutes(*prevEnd, placedStart)
		rounded := math.Round(prevGap)
		info.PrevGapMin = &rounded
	}
	nextGap := math.Inf(1)
	if nextStart != nil {
		nextGap = GapMinutes(placedEnd, *nextStart)
		rounded := math.Round(nextGap)
		info.NextGapMin = &rounded
	}

	prevShortfall := math.Max(0, travelBeforeMin-prevGap)
	nextShortfall := math.Max(0, travelAfterMin-nextGap)
	info.DiscrepancyMin = int(math.Round(prevShortfall + nextShortfall))
	return info
}
