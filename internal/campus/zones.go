// Package campus classifies geographic coordinates into named campus zones.
//
// A zone is a rectangular bounding box. Classification walks the zone list in
// order and returns the first zone whose box contains the point, so the list
// order is the tie-break rule if boxes ever overlap. Points outside every box
// classify as "Other".
//
// The default zone list covers the three BU sub-campuses and is compiled in;
// deployments can override it with a YAML file (see Load).
package campus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Other is returned for coordinates outside every configured zone.
const Other = "Other"

// Bounds is a rectangular bounding box in degrees.
type Bounds struct {
	LatMin float64 `yaml:"lat_min"`
	LatMax float64 `yaml:"lat_max"`
	LngMin float64 `yaml:"lng_min"`
	LngMax float64 `yaml:"lng_max"`
}

// contains reports whether the point lies inside the box, edges included.
func (b Bounds) contains(lat, lng float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax &&
		lng >= b.LngMin && lng <= b.LngMax
}

// Zone is a named campus region.
type Zone struct {
	Name   string `yaml:"name"`
	Bounds Bounds `yaml:"bounds"`
}

// Classifier maps coordinates to zone names. The zone list is fixed at
// construction — there is no runtime mutation, so a Classifier is safe for
// concurrent use.
type Classifier struct {
	zones []Zone
}

// DefaultZones returns the built-in zone list.
func DefaultZones() []Zone {
	return []Zone{
		{
			Name: "Charles River Campus",
			Bounds: Bounds{
				LatMin: 42.345, LatMax: 42.355,
				LngMin: -71.115, LngMax: -71.090,
			},
		},
		{
			Name: "BU Medical Campus",
			Bounds: Bounds{
				LatMin: 42.332, LatMax: 42.338,
				LngMin: -71.077, LngMax: -71.070,
			},
		},
		{
			Name: "Fenway Campus",
			Bounds: Bounds{
				LatMin: 42.336, LatMax: 42.340,
				LngMin: -71.106, LngMax: -71.100,
			},
		},
	}
}

// New creates a Classifier over the given zones. Zones are validated so a
// broken config file can't silently swallow every event into "Other".
func New(zones []Zone) (*Classifier, error) {
	if len(zones) == 0 {
		return nil, fmt.Errorf("campus: zone list must not be empty")
	}
	for i, z := range zones {
		if z.Name == "" {
			return nil, fmt.Errorf("campus: zone %d has no name", i)
		}
		if z.Bounds.LatMin >= z.Bounds.LatMax {
			return nil, fmt.Errorf("campus: zone %q: lat_min must be less than lat_max", z.Name)
		}
		if z.Bounds.LngMin >= z.Bounds.LngMax {
			return nil, fmt.Errorf("campus: zone %q: lng_min must be less than lng_max", z.Name)
		}
	}
	// Copy so the caller can't mutate our list after construction.
	c := &Classifier{zones: make([]Zone, len(zones))}
	copy(c.zones, zones)
	return c, nil
}

// Default returns a Classifier over DefaultZones.
func Default() *Classifier {
	c, err := New(DefaultZones())
	if err != nil {
		// DefaultZones is a compile-time constant list; this cannot fail.
		panic(err)
	}
	return c
}

// Load reads a zone list from a YAML file and builds a Classifier from it.
//
// File format:
//
//	zones:
//	  - name: Charles River Campus
//	    bounds:
//	      lat_min: 42.345
//	      lat_max: 42.355
//	      lng_min: -71.115
//	      lng_max: -71.090
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("campus: reading zone file: %w", err)
	}

	var file struct {
		Zones []Zone `yaml:"zones"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("campus: parsing zone file %s: %w", path, err)
	}

	return New(file.Zones)
}

// Classify returns the name of the first zone containing (lat, lng), or
// Other when no zone matches. Pure and total — every input has an answer.
func (c *Classifier) Classify(lat, lng float64) string {
	for _, z := range c.zones {
		if z.Bounds.contains(lat, lng) {
			return z.Name
		}
	}
	return Other
}

// Names returns the zone names in configuration order.
func (c *Classifier) Names() []string {
	names := make([]string, len(c.zones))
	for i, z := range c.zones {
		names[i] = z.Name
	}
	return names
}
