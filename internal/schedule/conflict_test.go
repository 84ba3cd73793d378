package schedule

import (
	"testing"
	"time"
)

func TestAnalyzeConflict(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	t.Run("TravelExceedsGap", func(t *testing.T) {
		// Museum 10:00–11:30, dinner starts 12:00, 45 min of travel needed.
		museumEnd := at(11, 30)
		dinnerStart := at(12, 0)
		info := AnalyzeConflict("museum", "Museum", at(10, 0), museumEnd, nil, &dinnerStart, 0, 45)

		if info.DiscrepancyMin != 15 {
			t.Errorf("Expected discrepancy 15, got %d", info.DiscrepancyMin)
		}
		if info.NextGapMin == nil || *info.NextGapMin != 30 {
			t.Errorf("Expected next gap 30, got %v", info.NextGapMin)
		}
		if info.Fits() {
			t.Error("Expected conflict, got fit")
		}
	})

	t.Run("FitsWhenGapCovers", func(t *testing.T) {
		prevEnd := at(9, 0)
		info := AnalyzeConflict("e", "Entry", at(10, 0), at(11, 0), &prevEnd, nil, 30, 0)
		if info.DiscrepancyMin != 0 || !info.Fits() {
			t.Errorf("Expected fit with zero discrepancy, got %d", info.DiscrepancyMin)
		}
	})

	t.Run("NoNeighborsAlwaysFits", func(t *testing.T) {
		info := AnalyzeConflict("e", "Entry", at(10, 0), at(11, 0), nil, nil, 500, 500)
		if !info.Fits() {
			t.Errorf("Expected unbounded gaps to absorb any travel time, got discrepancy %d", info.DiscrepancyMin)
		}
		if info.PrevGapMin != nil || info.NextGapMin != nil {
			t.Error("Expected nil gaps when there are no neighbors")
		}
	})

	t.Run("BothSidesShort", func(t *testing.T) {
		prevEnd := at(9, 50)  // 10 min before start
		nextStart := at(11, 5) // 5 min after end
		info := AnalyzeConflict("e", "Entry", at(10, 0), at(11, 0), &prevEnd, &nextStart, 20, 15)
		// Shortfalls: (20-10) + (15-5) = 20
		if info.DiscrepancyMin != 20 {
			t.Errorf("Expected discrepancy 20, got %d", info.DiscrepancyMin)
		}
	})

	t.Run("OverlapCountsFully", func(t *testing.T) {
		prevEnd := at(10, 10) // overlaps the placement by 10 min
		info := AnalyzeConflict("e", "Entry", at(10, 0), at(11, 0), &prevEnd, nil, 5, 0)
		// Gap is -10, so the shortfall is 5 - (-10) = 15.
		if info.DiscrepancyMin != 15 {
			t.Errorf("Expected discrepancy 15, got %d", info.DiscrepancyMin)
		}
		if info.PrevGapMin == nil || *info.PrevGapMin != -10 {
			t.Errorf("Expected prev gap -10, got %v", info.PrevGapMin)
		}
	})
}
