package services

import (
	"testing"
	"time"
)

func TestRouteCacheTransitKeyedByDeparture(t *testing.T) {
	cache := newRouteCache()
	lat, lng := 52.36, 4.88
	origin := RoutePoint{Lat: &lat, Lng: &lng}
	dest := RoutePoint{Address: "Amsterdam Centraal"}

	morning := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	evening := morning.Add(10 * time.Hour)

	cache.Put(origin, dest, ModeTransit, &morning, &RouteResult{Mode: ModeTransit, DurationMin: 12})

	if _, ok := cache.Get(origin, dest, ModeTransit, &evening); ok {
		t.Error("transit result cached for a morning departure served for an evening one")
	}
	if got, ok := cache.Get(origin, dest, ModeTransit, &morning); !ok || got.DurationMin != 12 {
		t.Errorf("expected cache hit for the same departure, got %v, %v", got, ok)
	}

	// Nearby departures fall in the same 15-minute bucket.
	nearby := morning.Add(5 * time.Minute)
	if _, ok := cache.Get(origin, dest, ModeTransit, &nearby); !ok {
		t.Error("expected cache hit for a departure in the same quantization bucket")
	}
}

func TestRouteCacheWalkIgnoresDeparture(t *testing.T) {
	cache := newRouteCache()
	origin := RoutePoint{Address: "Rijksmuseum"}
	dest := RoutePoint{Address: "Vondelpark"}

	morning := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	evening := morning.Add(10 * time.Hour)

	cache.Put(origin, dest, ModeWalk, &morning, &RouteResult{Mode: ModeWalk, DurationMin: 8})

	if _, ok := cache.Get(origin, dest, ModeWalk, &evening); !ok {
		t.Error("walk durations do not depend on departure, expected a cache hit")
	}
	if _, ok := cache.Get(origin, dest, ModeWalk, nil); !ok {
		t.Error("expected a cache hit with no departure at all")
	}
}
