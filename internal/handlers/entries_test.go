package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUpdateEntryTimesRejectsNonPositiveDuration(t *testing.T) {
	cases := []struct {
		name       string
		start, end int64
	}{
		{"ZeroLength", 1000, 1000},
		{"EndsBeforeStart", 1000, 400},
	}
	handler := UpdateEntryTimes(nil, nil, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := fmt.Sprintf(`{"start_time": %d, "end_time": %d}`, tc.start, tc.end)
			req := httptest.NewRequest(http.MethodPatch, "/entries/e1/times", strings.NewReader(body))
			rr := httptest.NewRecorder()

			handler(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestScheduleEntryRejectsZeroLength(t *testing.T) {
	handler := ScheduleEntry(nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/entries/e1/schedule",
		strings.NewReader(`{"start_time": 1000, "end_time": 1000}`))
	rr := httptest.NewRecorder()

	handler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
