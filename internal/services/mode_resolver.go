package services

import (
	"context"
	"log"
	"time"
)

// ModeResolver fetches route data for a candidate set of travel modes and
// applies the mode-selection policies. Route failures are deliberately
// silent: a failed or timed-out lookup looks exactly like "no route", so
// callers handle one absence case instead of two. Failures still get logged
// so the contract doesn't hide operational problems.
type ModeResolver struct {
	client RouteClient
}

// NewModeResolver creates a resolver backed by the given route client
func NewModeResolver(client RouteClient) *ModeResolver {
	return &ModeResolver{client: client}
}

// ResolveModes returns route data for every requested mode that has a viable
// route. Modes with no route, failed lookups, or invalid inputs are omitted;
// the result list is never nil-error.
func (r *ModeResolver) ResolveModes(ctx context.Context, origin, dest RoutePoint, modes []TravelMode, departure *time.Time) []RouteResult {
	if len(modes) == 0 {
		log.Printf("⚠️  Mode resolution called with no modes requested")
		return nil
	}
	if !origin.Resolved() || !dest.Resolved() {
		log.Printf("⚠️  Mode resolution skipped: unresolved endpoint (origin=%v dest=%v)", origin.Resolved(), dest.Resolved())
		return nil
	}

	results := make([]RouteResult, 0, len(modes))
	for _, mode := range modes {
		route, err := r.client.ComputeRoute(ctx, origin, dest, mode, departure)
		if err != nil {
			log.Printf("⚠️  Route lookup failed for mode %s: %v", mode, err)
			continue
		}
		if route == nil {
			continue
		}
		results = append(results, *route)
	}
	return results
}

// PickSynthesisMode applies the transfer-synthesis policy: walk when the
// walking route fits within the trip's walk threshold (inclusive), else
// transit, else fall back to walking however long, else nothing.
func PickSynthesisMode(results []RouteResult, walkThresholdMin int) *RouteResult {
	var walk, transit *RouteResult
	for i := range results {
		switch results[i].Mode {
		case ModeWalk:
			walk = &results[i]
		case ModeTransit:
			transit = &results[i]
		}
	}
	if walk != nil && walk.DurationMin <= float64(walkThresholdMin) {
		return walk
	}
	if transit != nil {
		return transit
	}
	return walk
}

// fastestTieOrder breaks duration ties deterministically.
var fastestTieOrder = []TravelMode{ModeWalk, ModeTransit, ModeBicycle, ModeDrive}

// PickFastestMode selects the minimum-duration mode, breaking ties by a
// fixed preference order (walk > transit > bicycle > drive).
func PickFastestMode(results []RouteResult) *RouteResult {
	var best *RouteResult
	for _, preferred := range fastestTieOrder {
		for i := range results {
			if results[i].Mode != preferred {
				continue
			}
			if best == nil || results[i].DurationMin < best.DurationMin {
				best = &results[i]
			}
		}
	}
	return best
}
