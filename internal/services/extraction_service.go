package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// LLMClient is an interface for a client that can interact with a large language model.
type LLMClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Close() error
}

// geminiClient is a client for the Google Gemini API.
type geminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string) (LLMClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	return &geminiClient{client: client, model: model}, nil
}

// GenerateContent sends a prompt to the Gemini model and returns the generated text.
func (c *geminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("generated content is not text")
	}

	return string(text), nil
}

// Close closes the underlying Gemini client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

// ExtractedFlight is flight data pulled from a pasted booking confirmation.
// Times are local wall-clock values in the named zones; the entry layer
// converts them to UTC.
type ExtractedFlight struct {
	FlightNumber      string `json:"flight_number"`
	DepartureLocation string `json:"departure_location"`
	ArrivalLocation   string `json:"arrival_location"`
	DepartureDate     string `json:"departure_date"` // 2006-01-02
	DepartureTime     string `json:"departure_time"` // 15:04
	ArrivalDate       string `json:"arrival_date"`
	ArrivalTime       string `json:"arrival_time"`
	DepartureTimezone string `json:"departure_timezone"`
	ArrivalTimezone   string `json:"arrival_timezone"`
	DepartureTerminal string `json:"departure_terminal,omitempty"`
	ArrivalTerminal   string `json:"arrival_terminal,omitempty"`
}

// ExtractedHotel is hotel stay data pulled from a booking confirmation.
type ExtractedHotel struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	CheckinDate  string `json:"checkin_date"`
	CheckoutDate string `json:"checkout_date"`
	CheckinTime  string `json:"checkin_time,omitempty"`
	CheckoutTime string `json:"checkout_time,omitempty"`
}

// ExtractionResult is everything recognized in one pasted document.
type ExtractionResult struct {
	Flights []ExtractedFlight `json:"flights"`
	Hotels  []ExtractedHotel  `json:"hotels"`
}

// ExtractionService turns pasted booking confirmations into structured trip
// data via an LLM.
type ExtractionService struct {
	llm LLMClient
}

// NewExtractionService creates an extraction service over the given LLM client.
func NewExtractionService(llm LLMClient) *ExtractionService {
	return &ExtractionService{llm: llm}
}

const extractionPrompt = `Extract flight and hotel bookings from the document below.
Respond with ONLY a JSON object, no prose, matching this shape:
{
  "flights": [{"flight_number": "", "departure_location": "", "arrival_location": "",
    "departure_date": "YYYY-MM-DD", "departure_time": "HH:MM",
    "arrival_date": "YYYY-MM-DD", "arrival_time": "HH:MM",
    "departure_timezone": "IANA zone", "arrival_timezone": "IANA zone",
    "departure_terminal": "", "arrival_terminal": ""}],
  "hotels": [{"name": "", "address": "", "checkin_date": "YYYY-MM-DD",
    "checkout_date": "YYYY-MM-DD", "checkin_time": "HH:MM", "checkout_time": "HH:MM"}]
}
All times are local to their airport or hotel. Use empty arrays when nothing matches.

Document:
%s`

// Extract parses a pasted booking document into structured flights and hotels.
func (s *ExtractionService) Extract(ctx context.Context, document string) (*ExtractionResult, error) {
	if strings.TrimSpace(document) == "" {
		return nil, fmt.Errorf("document is empty")
	}

	raw, err := s.llm.GenerateContent(ctx, fmt.Sprintf(extractionPrompt, document))
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	return ParseExtraction(raw)
}

// ParseExtraction decodes the model's JSON reply. Models often wrap JSON in
// markdown fences despite instructions, so those are stripped first.
func ParseExtraction(raw string) (*ExtractionResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result ExtractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if result.Flights == nil {
		result.Flights = []ExtractedFlight{}
	}
	if result.Hotels == nil {
		result.Hotels = []ExtractedHotel{}
	}
	return &result, nil
}
