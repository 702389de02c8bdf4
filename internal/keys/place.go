package keys

import (
	"tabimap/models"
)

// Place returns the stable identity key for a saved place: the Google Maps URL
// when one is present, otherwise the display name. Distinct places that share
// a name and carry no URL therefore collapse into a single key; callers that
// group by key inherit that merge.
func Place(p models.Place) string {
	if p.GoogleMapsURL != nil && *p.GoogleMapsURL != "" {
		return *p.GoogleMapsURL
	}
	return p.Name
}

// Feature resolves the same two-tier key straight from a raw saved-places
// feature, before it has been parsed into a Place. An empty string means the
// feature has neither a URL nor a name and cannot be addressed.
func Feature(f *models.Feature) string {
	if url, ok := f.Property("google_maps_url"); ok && url != "" {
		return url
	}
	if loc := f.Location(); loc != nil {
		if name, ok := loc["name"].(string); ok {
			return name
		}
	}
	return ""
}
