package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// GeocodingService handles geocoding and reverse geocoding using Google Maps API
type GeocodingService struct {
	apiKey string
	client *http.Client
}

// Coordinates represents latitude and longitude
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a resolved location: the formatted address plus its coordinates.
type Place struct {
	FormattedAddress string      `json:"formatted_address"`
	Coordinates      Coordinates `json:"coordinates"`
}

type googleGeocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location Coordinates `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status string `json:"status"`
}

// NewGeocodingService creates a new geocoding service
func NewGeocodingService() (*GeocodingService, error) {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY environment variable is required")
	}

	return &GeocodingService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Geocode converts an address or place name to coordinates. Trip entries
// created from free-form names go through here so the route engine always
// has a coordinate to work with.
func (s *GeocodingService) Geocode(ctx context.Context, address string) (*Place, error) {
	params := url.Values{}
	params.Add("address", address)
	params.Add("key", s.apiKey)
	return s.query(ctx, params)
}

// ReverseGeocode converts coordinates to a formatted address.
func (s *GeocodingService) ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error) {
	params := url.Values{}
	params.Add("latlng", fmt.Sprintf("%f,%f", lat, lng))
	params.Add("key", s.apiKey)

	place, err := s.query(ctx, params)
	if err != nil {
		return nil, err
	}
	place.Coordinates = Coordinates{Lat: lat, Lng: lng}
	return place, nil
}

func (s *GeocodingService) query(ctx context.Context, params url.Values) (*Place, error) {
	fullURL := fmt.Sprintf("https://maps.googleapis.com/maps/api/geocode/json?%s", params.Encode())

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
		return nil, fmt.Errorf("API returned status code %d", resp.StatusCode)
	}

	var result googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Status != "OK" {
		return nil, fmt.Errorf("geocoding API returned status: %s", result.Status)
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("no results found")
	}

	first := result.Results[0]
	return &Place{
		FormattedAddress: first.FormattedAddress,
		Coordinates:      first.Geometry.Location,
	}, nil
}
