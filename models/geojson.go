package models

// FeatureCollection mirrors the GeoJSON document that Google Takeout exports
// for saved places. Feature properties stay raw maps so fields this toolkit
// does not understand survive a load/modify/save cycle untouched.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry keeps coordinates as raw values; exports sometimes hold garbage
// there and the accessors below decide what counts as a usable pair.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates []any  `json:"coordinates"`
}

// Coordinates returns the [lon, lat] pair when the geometry holds exactly two
// numeric entries.
func (f *Feature) Coordinates() (lon, lat float64, ok bool) {
	if f.Geometry == nil || len(f.Geometry.Coordinates) != 2 {
		return 0, 0, false
	}
	lon, okLon := toFloat(f.Geometry.Coordinates[0])
	lat, okLat := toFloat(f.Geometry.Coordinates[1])
	if !okLon || !okLat {
		return 0, 0, false
	}
	return lon, lat, true
}

// SetCoordinates replaces the feature geometry with a Point at [lon, lat].
func (f *Feature) SetCoordinates(lon, lat float64) {
	f.Geometry = &Geometry{Type: "Point", Coordinates: []any{lon, lat}}
}

// Location returns the properties.location object, or nil when absent.
func (f *Feature) Location() map[string]any {
	if f.Properties == nil {
		return nil
	}
	loc, _ := f.Properties["location"].(map[string]any)
	return loc
}

// EnsureLocation returns the properties.location object, creating it and the
// properties map first when either is missing.
func (f *Feature) EnsureLocation() map[string]any {
	if f.Properties == nil {
		f.Properties = make(map[string]any)
	}
	loc, ok := f.Properties["location"].(map[string]any)
	if !ok {
		loc = make(map[string]any)
		f.Properties["location"] = loc
	}
	return loc
}

// Property returns the named top-level property when it is a string. The
// boolean distinguishes a stored empty string from a missing field.
func (f *Feature) Property(name string) (string, bool) {
	if f.Properties == nil {
		return "", false
	}
	s, ok := f.Properties[name].(string)
	return s, ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
