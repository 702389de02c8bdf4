// Package urlcoord recovers latitude/longitude pairs embedded in Google Maps
// URLs, for saved places whose geometry was exported without coordinates.
package urlcoord

import (
	"net/url"
	"regexp"
	"strconv"
)

var pairPattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)[,\s]+(-?\d+(?:\.\d+)?)`)

// Extract pulls a coordinate pair out of a Google Maps URL. It checks the q
// query parameter first, then the fragment, then the path, returning the first
// number pair that forms a plausible coordinate. When the leading number is
// out of latitude range but the swapped order works, the pair is swapped, so
// URLs listing longitude first still resolve.
func Extract(rawURL string) (lat, lon float64, ok bool) {
	if rawURL == "" {
		return 0, 0, false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, 0, false
	}

	for _, raw := range u.Query()["q"] {
		if lat, lon, ok = extractPair(raw); ok {
			return lat, lon, true
		}
	}
	if lat, lon, ok = extractPair(u.Fragment); ok {
		return lat, lon, true
	}
	return extractPair(u.Path)
}

func extractPair(text string) (lat, lon float64, ok bool) {
	if text == "" {
		return 0, 0, false
	}
	m := pairPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	first, err1 := strconv.ParseFloat(m[1], 64)
	second, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if inRange(first, second) {
		return first, second, true
	}
	if inRange(second, first) {
		return second, first, true
	}
	return 0, 0, false
}

func inRange(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
