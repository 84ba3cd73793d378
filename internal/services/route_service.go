package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// TravelMode is one way of getting between two points
type TravelMode string

const (
	ModeWalk    TravelMode = "walk"
	ModeTransit TravelMode = "transit"
	ModeDrive   TravelMode = "drive"
	ModeBicycle TravelMode = "bicycle"
)

// Emoji returns the timeline marker used in synthesized transfer names.
func (m TravelMode) Emoji() string {
	switch m {
	case ModeWalk:
		return "🚶"
	case ModeTransit:
		return "🚆"
	case ModeDrive:
		return "🚗"
	case ModeBicycle:
		return "🚴"
	}
	return "➡️"
}

// Title returns the capitalized mode name for display.
func (m TravelMode) Title() string {
	switch m {
	case ModeWalk:
		return "Walk"
	case ModeTransit:
		return "Transit"
	case ModeDrive:
		return "Drive"
	case ModeBicycle:
		return "Bike"
	}
	return string(m)
}

// apiMode maps to the Routes API travelMode enum.
func (m TravelMode) apiMode() string {
	switch m {
	case ModeWalk:
		return "WALK"
	case ModeTransit:
		return "TRANSIT"
	case ModeDrive:
		return "DRIVE"
	case ModeBicycle:
		return "BICYCLE"
	}
	return ""
}

// RoutePoint is a route endpoint: either a coordinate pair or a free-form
// address string.
type RoutePoint struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `json:"address,omitempty"`
}

// Resolved reports whether the point can be sent to the routing API at all.
func (p RoutePoint) Resolved() bool {
	return (p.Lat != nil && p.Lng != nil) || p.Address != ""
}

// RouteResult is the routing data for one travel mode between two points.
type RouteResult struct {
	Mode        TravelMode `json:"mode"`
	DurationMin float64    `json:"duration_min"`
	DistanceKm  float64    `json:"distance_km"`
	Path        string     `json:"path,omitempty"` // encoded polyline
}

// RouteClient computes a route for a single mode. A nil result with a nil
// error means no viable route exists for that mode.
type RouteClient interface {
	ComputeRoute(ctx context.Context, origin, dest RoutePoint, mode TravelMode, departure *time.Time) (*RouteResult, error)
}

// GoogleRoutesService calls the Google Routes API (computeRoutes)
type GoogleRoutesService struct {
	apiKey string
	client *http.Client
	cache  *routeCache
}

// NewGoogleRoutesService creates a new Routes API client
func NewGoogleRoutesService(apiKey string) *GoogleRoutesService {
	return &GoogleRoutesService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
		cache:  newRouteCache(),
	}
}

type routesWaypoint struct {
	Location *struct {
		LatLng struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"latLng"`
	} `json:"location,omitempty"`
	Address string `json:"address,omitempty"`
}

type computeRoutesRequest struct {
	Origin        routesWaypoint `json:"origin"`
	Destination   routesWaypoint `json:"destination"`
	TravelMode    string         `json:"travelMode"`
	DepartureTime string         `json:"departureTime,omitempty"` // RFC3339
}

type computeRoutesResponse struct {
	Routes []struct {
		Duration       string `json:"duration"` // e.g. "492s"
		DistanceMeters int    `json:"distanceMeters"`
		Polyline       struct {
			EncodedPolyline string `json:"encodedPolyline"`
		} `json:"polyline"`
	} `json:"routes"`
}

// ComputeRoute queries one travel mode between two endpoints. Returns
// (nil, nil) when no route exists.
func (s *GoogleRoutesService) ComputeRoute(ctx context.Context, origin, dest RoutePoint, mode TravelMode, departure *time.Time) (*RouteResult, error) {
	if !origin.Resolved() || !dest.Resolved() {
		return nil, fmt.Errorf("both endpoints must have coordinates or an address")
	}

	if cached, ok := s.cache.Get(origin, dest, mode, departure); ok {
		return cached, nil
	}

	request := computeRoutesRequest{
		Origin:      toWaypoint(origin),
		Destination: toWaypoint(dest),
		TravelMode:  mode.apiMode(),
	}
	// The Routes API rejects departureTime for walking and cycling.
	if departure != nil && (mode == ModeTransit || mode == ModeDrive) {
		request.DepartureTime = departure.UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		"https://routes.googleapis.com/directions/v2:computeRoutes", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", s.apiKey)
	req.Header.Set("X-Goog-FieldMask", "routes.duration,routes.distanceMeters,routes.polyline.encodedPolyline")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ Routes API error (status %d): %s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("routes API returned status %d", resp.StatusCode)
	}

	var result computeRoutesResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(result.Routes) == 0 {
		// No viable route for this mode: not an error, just absent.
		return nil, nil
	}

	route := result.Routes[0]
	seconds, err := parseAPIDuration(route.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration %q: %w", route.Duration, err)
	}

	out := &RouteResult{
		Mode:        mode,
		DurationMin: seconds / 60.0,
		DistanceKm:  float64(route.DistanceMeters) / 1000.0,
		Path:        route.Polyline.EncodedPolyline,
	}
	s.cache.Put(origin, dest, mode, departure, out)
	return out, nil
}

func toWaypoint(p RoutePoint) routesWaypoint {
	var wp routesWaypoint
	if p.Lat != nil && p.Lng != nil {
		wp.Location = &struct {
			LatLng struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"latLng"`
		}{}
		wp.Location.LatLng.Latitude = *p.Lat
		wp.Location.LatLng.Longitude = *p.Lng
		return wp
	}
	wp.Address = p.Address
	return wp
}

// parseAPIDuration parses the Routes API "123s" duration format.
func parseAPIDuration(d string) (float64, error) {
	trimmed := strings.TrimSuffix(d, "s")
	return strconv.ParseFloat(trimmed, 64)
}
