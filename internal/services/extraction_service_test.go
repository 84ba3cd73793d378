package services

import (
	"context"
	"errors"
	"testing"
)

type cannedLLM struct {
	reply string
	err   error
}

func (c *cannedLLM) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.reply, c.err
}

func (c *cannedLLM) Close() error { return nil }

func TestParseExtractionStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"flights\":[{\"flight_number\":\"KL1009\",\"departure_location\":\"Amsterdam Schiphol\",\"arrival_location\":\"London Heathrow\",\"departure_date\":\"2026-05-02\",\"departure_time\":\"09:15\",\"arrival_date\":\"2026-05-02\",\"arrival_time\":\"09:40\",\"departure_timezone\":\"Europe/Amsterdam\",\"arrival_timezone\":\"Europe/London\"}],\"hotels\":[]}\n```"

	result, err := ParseExtraction(raw)
	if err != nil {
		t.Fatalf("ParseExtraction: %v", err)
	}
	if len(result.Flights) != 1 {
		t.Fatalf("expected 1 flight, got %d", len(result.Flights))
	}
	flight := result.Flights[0]
	if flight.FlightNumber != "KL1009" {
		t.Errorf("flight number = %q", flight.FlightNumber)
	}
	if flight.ArrivalTimezone != "Europe/London" {
		t.Errorf("arrival timezone = %q", flight.ArrivalTimezone)
	}
	if result.Hotels == nil {
		t.Error("hotels should be an empty slice, not nil")
	}
}

func TestParseExtractionRejectsNonJSON(t *testing.T) {
	if _, err := ParseExtraction("I could not find any bookings."); err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	svc := NewExtractionService(&cannedLLM{})
	if _, err := svc.Extract(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestExtractPropagatesLLMError(t *testing.T) {
	svc := NewExtractionService(&cannedLLM{err: errors.New("quota exceeded")})
	if _, err := svc.Extract(context.Background(), "Flight KL1009 ..."); err == nil {
		t.Fatal("expected error from LLM failure")
	}
}
