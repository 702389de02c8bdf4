// Package takeout loads the saved-places GeoJSON that Google Takeout exports
// and converts its features into place records.
package takeout

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"tabimap/models"
	"tabimap/pkg/geo"
)

// UnnamedPlace is the display name used for saved places without one.
const UnnamedPlace = "<Unnamed>"

// ReadFile loads a saved-places GeoJSON document from disk.
func ReadFile(path string) (*models.FeatureCollection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read places file: %w", err)
	}
	var fc models.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse places file %s: %w", path, err)
	}
	return &fc, nil
}

// WriteFile writes a collection back in the export's formatting: two-space
// indent, non-ASCII and URL characters kept literal. Parent directories are
// created as needed.
func WriteFile(path string, fc *models.FeatureCollection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode places: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write places file: %w", err)
	}
	return nil
}

// Places converts features into place records. Features without a usable
// coordinate pair, and features parked at the (0, 0) sentinel, are skipped
// silently; they have no position to match against. Unnamed places get the
// UnnamedPlace display name. Listing order is preserved.
func Places(fc *models.FeatureCollection) []models.Place {
	places := make([]models.Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		lon, lat, ok := f.Coordinates()
		if !ok || geo.IsSentinel(lon, lat) {
			continue
		}
		loc := f.Location()
		name, _ := loc["name"].(string)
		if name == "" {
			name = UnnamedPlace
		}
		places = append(places, models.Place{
			Name:          name,
			Address:       optString(loc, "address"),
			Lon:           lon,
			Lat:           lat,
			Category:      optString(f.Properties, "category"),
			SavedList:     optString(f.Properties, "saved_list"),
			Prefecture:    optString(f.Properties, "prefecture"),
			GoogleMapsURL: optString(f.Properties, "google_maps_url"),
		})
	}
	return places
}

// SplitByBounds partitions features by whether their coordinates fall inside
// the bounds. Features without a usable coordinate pair land in the missing
// partition. The sentinel pair is a position like any other here and
// classifies as inside or outside on its own merits.
func SplitByBounds(fc *models.FeatureCollection, b geo.Bounds) (inside, outside, missing []*models.Feature) {
	inside = make([]*models.Feature, 0, len(fc.Features))
	outside = make([]*models.Feature, 0)
	missing = make([]*models.Feature, 0)
	for _, f := range fc.Features {
		lon, lat, ok := f.Coordinates()
		switch {
		case !ok:
			missing = append(missing, f)
		case b.Contains(lat, lon):
			inside = append(inside, f)
		default:
			outside = append(outside, f)
		}
	}
	return inside, outside, missing
}

func optString(m map[string]any, key string) *string {
	if m == nil {
		return nil
	}
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}
