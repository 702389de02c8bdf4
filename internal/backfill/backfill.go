// Package backfill holds the enrichment steps that fill gaps in saved-place
// features: default metadata, prefectures, coordinates recovered from Google
// Maps URLs or geocoding, and country codes.
package backfill

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"tabimap/internal/enrich"
	"tabimap/models"
	"tabimap/pkg/geo"
	"tabimap/pkg/location"
	"tabimap/pkg/prefecture"
	"tabimap/pkg/urlcoord"
)

// Stats counts what a run changed. Steps in the same stage may update it
// concurrently, so every field is atomic.
type Stats struct {
	DefaultsAdded     atomic.Int64
	PrefecturesSet    atomic.Int64
	PrefecturesKept   atomic.Int64
	PrefecturesMissed atomic.Int64
	CoordsFromURL     atomic.Int64
	CountryMissing    atomic.Int64
	CountryCodesSet   atomic.Int64
	Geocoded          atomic.Int64
	GeocodeMisses     atomic.Int64
}

// defaultProps are the metadata keys every feature is expected to carry and
// the value they start with when absent.
var defaultProps = []struct {
	key   string
	value any
}{
	{"saved_list", "star"},
	{"category", "place"},
	{"prefecture", nil},
	{"notes", nil},
	{"visited", nil},
	{"visited_date", nil},
	{"tabelog_rating", nil},
}

// Defaults adds the missing metadata keys with their initial values. Keys that
// are present keep their value, including explicit nulls. Each added key
// counts once.
func Defaults(stats *Stats) enrich.Step[models.Feature] {
	return func(_ context.Context, f *models.Feature) error {
		if f.Properties == nil {
			f.Properties = make(map[string]any)
		}
		for _, def := range defaultProps {
			if _, ok := f.Properties[def.key]; ok {
				continue
			}
			f.Properties[def.key] = def.value
			stats.DefaultsAdded.Add(1)
		}
		return nil
	}
}

// Prefecture derives the prefecture property from the location address. An
// already set prefecture is kept unless force is true.
func Prefecture(force bool, stats *Stats) enrich.Step[models.Feature] {
	return func(_ context.Context, f *models.Feature) error {
		current, _ := f.Property("prefecture")
		if current != "" && !force {
			stats.PrefecturesKept.Add(1)
			return nil
		}

		var address string
		if loc := f.Location(); loc != nil {
			address, _ = loc["address"].(string)
		}
		pref, found := prefecture.FromAddress(address)
		switch {
		case found && current != pref:
			if f.Properties == nil {
				f.Properties = make(map[string]any)
			}
			f.Properties["prefecture"] = pref
			stats.PrefecturesSet.Add(1)
		case !found && current == "":
			stats.PrefecturesMissed.Add(1)
		}
		return nil
	}
}

// URLCoordinates recovers coordinates from the google_maps_url for features
// whose geometry is missing, malformed, or the (0,0) placeholder.
func URLCoordinates(stats *Stats) enrich.Step[models.Feature] {
	return func(_ context.Context, f *models.Feature) error {
		if lon, lat, ok := f.Coordinates(); ok && !geo.IsSentinel(lon, lat) {
			return nil
		}
		rawURL, ok := f.Property("google_maps_url")
		if !ok || rawURL == "" {
			return nil
		}
		lat, lon, ok := urlcoord.Extract(rawURL)
		if !ok {
			return nil
		}
		f.SetCoordinates(lon, lat)
		stats.CoordsFromURL.Add(1)
		return nil
	}
}

// CountryCode fills a blank location.country_code with code when the feature's
// coordinates fall inside bounds, or when its Maps URL or address contains one
// of the given hints (case-insensitive).
func CountryCode(bounds geo.Bounds, code string, urlHints, addressHints []string, stats *Stats) enrich.Step[models.Feature] {
	return func(_ context.Context, f *models.Feature) error {
		loc := f.EnsureLocation()
		if current, _ := loc["country_code"].(string); strings.TrimSpace(current) != "" {
			return nil
		}
		stats.CountryMissing.Add(1)

		assign := false
		if lon, lat, ok := f.Coordinates(); ok && bounds.Contains(lat, lon) {
			assign = true
		} else if matchesHints(f, urlHints, addressHints) {
			assign = true
		}
		if assign {
			loc["country_code"] = code
			stats.CountryCodesSet.Add(1)
		}
		return nil
	}
}

func matchesHints(f *models.Feature, urlHints, addressHints []string) bool {
	rawURL, _ := f.Property("google_maps_url")
	lowerURL := strings.ToLower(rawURL)
	for _, h := range urlHints {
		if h != "" && strings.Contains(lowerURL, strings.ToLower(h)) {
			return true
		}
	}

	var address string
	if loc := f.Location(); loc != nil {
		address, _ = loc["address"].(string)
	}
	lowerAddr := strings.ToLower(address)
	for _, h := range addressHints {
		if h != "" && strings.Contains(lowerAddr, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

// Geocode resolves coordinates for features that still lack them by querying
// the location service with the place name and address. Lookups that return
// no result are counted but not treated as errors.
func Geocode(client *location.Client, stats *Stats) enrich.Step[models.Feature] {
	return func(ctx context.Context, f *models.Feature) error {
		if lon, lat, ok := f.Coordinates(); ok && !geo.IsSentinel(lon, lat) {
			return nil
		}

		var name, address string
		if loc := f.Location(); loc != nil {
			name, _ = loc["name"].(string)
			address, _ = loc["address"].(string)
		}
		query := strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(address))
		if query == "" {
			return nil
		}

		result, err := client.Geocode(ctx, query)
		if errors.Is(err, location.ErrNoResults) {
			stats.GeocodeMisses.Add(1)
			return nil
		}
		if err != nil {
			return err
		}
		f.SetCoordinates(result.Lon, result.Lat)
		stats.Geocoded.Add(1)
		return nil
	}
}
