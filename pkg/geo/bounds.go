package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Bounds is a rectangular latitude/longitude extent. Both edges are inclusive.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Japan covers the main islands plus the outlying territories, from Yonaguni
// in the southwest to Cape Soya in the north and Minamitorishima in the east.
var Japan = Bounds{
	MinLat: 20.214581,
	MaxLat: 45.711204,
	MinLon: 122.93457,
	MaxLon: 154.205541,
}

// Contains reports whether the point falls inside the box, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return b.MinLat <= lat && lat <= b.MaxLat &&
		b.MinLon <= lon && lon <= b.MaxLon
}

// ParseBounds parses a "minLat,maxLat,minLon,maxLon" override string.
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, fmt.Errorf("bounds must have four comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("invalid bounds value %q: %w", part, err)
		}
		vals[i] = v
	}
	b := Bounds{MinLat: vals[0], MaxLat: vals[1], MinLon: vals[2], MaxLon: vals[3]}
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return Bounds{}, fmt.Errorf("bounds minimum exceeds maximum: %q", s)
	}
	return b, nil
}
