package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// WeatherService fetches daily forecasts from Open-Meteo for trip days. The
// API is keyless, so unlike the other clients there is no credential wiring.
type WeatherService struct {
	client *http.Client
}

// DayForecast is the forecast for one calendar day at a location.
type DayForecast struct {
	Date             string  `json:"date"`
	TempMaxC         float64 `json:"temp_max_c"`
	TempMinC         float64 `json:"temp_min_c"`
	PrecipitationMm  float64 `json:"precipitation_mm"`
	PrecipProbability int     `json:"precip_probability"`
	WeatherCode      int     `json:"weather_code"`
}

type openMeteoResponse struct {
	Daily struct {
		Time                     []string  `json:"time"`
		Temperature2mMax         []float64 `json:"temperature_2m_max"`
		Temperature2mMin         []float64 `json:"temperature_2m_min"`
		PrecipitationSum         []float64 `json:"precipitation_sum"`
		PrecipitationProbability []int     `json:"precipitation_probability_max"`
		WeatherCode              []int     `json:"weather_code"`
	} `json:"daily"`
}

// NewWeatherService creates a new weather service
func NewWeatherService() *WeatherService {
	return &WeatherService{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// DailyForecast returns per-day forecasts for a coordinate between two dates
// (inclusive, "2006-01-02"). Open-Meteo only forecasts ~16 days out; days
// beyond that simply come back absent.
func (s *WeatherService) DailyForecast(ctx context.Context, lat, lng float64, startDate, endDate string) ([]DayForecast, error) {
	params := url.Values{}
	params.Add("latitude", fmt.Sprintf("%f", lat))
	params.Add("longitude", fmt.Sprintf("%f", lng))
	params.Add("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_probability_max,weather_code")
	params.Add("start_date", startDate)
	params.Add("end_date", endDate)
	params.Add("timezone", "auto")

	fullURL := fmt.Sprintf("https://api.open-meteo.com/v1/forecast?%s", params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status code %d", resp.StatusCode)
	}

	var result openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	forecasts := make([]DayForecast, 0, len(result.Daily.Time))
	for i, day := range result.Daily.Time {
		f := DayForecast{Date: day}
		if i < len(result.Daily.Temperature2mMax) {
			f.TempMaxC = result.Daily.Temperature2mMax[i]
		}
		if i < len(result.Daily.Temperature2mMin) {
			f.TempMinC = result.Daily.Temperature2mMin[i]
		}
		if i < len(result.Daily.PrecipitationSum) {
			f.PrecipitationMm = result.Daily.PrecipitationSum[i]
		}
		if i < len(result.Daily.PrecipitationProbability) {
			f.PrecipProbability = result.Daily.PrecipitationProbability[i]
		}
		if i < len(result.Daily.WeatherCode) {
			f.WeatherCode = result.Daily.WeatherCode[i]
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, nil
}
