// Package filter implements the event filter/sort pipeline.
//
// Everything here is a pure function over an event slice: callers pass an
// immutable snapshot of the fetched events and get a fresh slice back —
// nothing mutates shared state, so applying the same query twice yields the
// same result as applying it once.
package filter

import (
	"math"
	"sort"
	"time"

	"github.com/sparkbytes/server/internal/expiry"
	"github.com/sparkbytes/server/internal/model"
)

// Time filter values. Current keeps live events; Past keeps the complement
// (expired OR gone).
const (
	TimeCurrent = "current"
	TimePast    = "past"
)

// Origin is a caller-supplied position for nearest-first sorting, usually
// the browser's one-shot geolocation fix.
type Origin struct {
	Lat float64
	Lng float64
}

// Query describes one filter/sort request.
//
// Empty string fields mean "no constraint". Nearest, when non-nil, re-orders
// the filtered set by ascending distance from the origin. MapOnly drops
// events without coordinates — map views can't place them, list views keep
// them.
type Query struct {
	Time     string // TimeCurrent (default) or TimePast
	Location string // exact match on the free-text location label
	Diet     string // membership in the event's dietary-preference tags
	Campus   string // exact match on the derived campus name
	MapOnly  bool
	Nearest  *Origin
}

// Apply runs the query against the event snapshot and returns the matching
// subset as a new slice. now anchors the current/past classification.
func Apply(events []model.Event, q Query, now time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if !timeValid(e, q.Time, now) {
			continue
		}
		if q.Location != "" && e.Location != q.Location {
			continue
		}
		if q.Diet != "" && !contains(e.DietaryPreferences, q.Diet) {
			continue
		}
		if q.Campus != "" && e.Campus != q.Campus {
			continue
		}
		if q.MapOnly && !e.HasCoordinates() {
			continue
		}
		out = append(out, e)
	}

	if q.Nearest != nil {
		SortNearest(out, *q.Nearest)
	}

	return out
}

// timeValid classifies the event against the requested time bucket.
// "current" means not expired AND food not gone; "past" is the exact
// negation, so every event lands in exactly one bucket.
func timeValid(e model.Event, timeFilter string, now time.Time) bool {
	past := expiry.Past(e.Status, e.ExpiresAt, now)
	if timeFilter == TimePast {
		return past
	}
	return !past
}

// SortNearest orders events in place by ascending distance from origin.
//
// Distance is plain Euclidean in raw lat/lng degrees — not geodesic. All
// events sit on one campus, where the metric distortion is far smaller than
// GPS error, and what matters is the order, not the metres. Events without
// coordinates sort by their (0,0) zero value. The sort is stable so equal
// distances keep their fetch order.
func SortNearest(events []model.Event, origin Origin) {
	sort.SliceStable(events, func(i, j int) bool {
		return distance(events[i], origin) < distance(events[j], origin)
	})
}

func distance(e model.Event, o Origin) float64 {
	return math.Hypot(o.Lat-e.Latitude, o.Lng-e.Longitude)
}

// Options holds the distinct values available for each filter dropdown.
type Options struct {
	Locations []string `json:"locations"`
	Diets     []string `json:"diets"`
	Campuses  []string `json:"campuses"`
}

// CollectOptions extracts the distinct locations, dietary tags, and campuses
// from the UNFILTERED event set. Option lists always reflect the full corpus
// so a selected filter never hides the other choices.
func CollectOptions(events []model.Event) Options {
	locations := map[string]bool{}
	diets := map[string]bool{}
	campuses := map[string]bool{}

	for _, e := range events {
		if e.Location != "" {
			locations[e.Location] = true
		}
		for _, d := range e.DietaryPreferences {
			if d != "" {
				diets[d] = true
			}
		}
		if e.Campus != "" {
			campuses[e.Campus] = true
		}
	}

	return Options{
		Locations: sortedKeys(locations),
		Diets:     sortedKeys(diets),
		Campuses:  sortedKeys(campuses),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
