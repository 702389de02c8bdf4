// Package exif loads exiftool JSON dumps and converts the entries that carry
// usable GPS data into photo records.
package exif

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"tabimap/models"
	"tabimap/pkg/geo"
)

// exiftool writes capture times as "2006:01:02 15:04:05" local time.
const timeLayout = "2006:01:02 15:04:05"

// Entry is one raw exiftool record. It keeps every field the tool emitted so
// a filtered subset can be written back without loss.
type Entry map[string]any

// Filename returns the FileName field, or "" when absent.
func (e Entry) Filename() string {
	s, _ := e["FileName"].(string)
	return s
}

// Directory returns the Directory field, or "" when absent.
func (e Entry) Directory() string {
	s, _ := e["Directory"].(string)
	return s
}

// Coordinates returns the GPS pair. Values may be JSON numbers or numeric
// strings; a missing or malformed value means the entry has no usable
// position.
func (e Entry) Coordinates() (lat, lon float64, ok bool) {
	lat, okLat := coordinate(e["GPSLatitude"])
	lon, okLon := coordinate(e["GPSLongitude"])
	if !okLat || !okLon {
		return 0, 0, false
	}
	return lat, lon, true
}

// Timestamp returns DateTimeOriginal normalized to ISO-8601, or nil when the
// field is missing or not in the EXIF layout. A bad capture time never makes
// the entry invalid, it only loses the time dimension.
func (e Entry) Timestamp() *string {
	s, ok := e["DateTimeOriginal"].(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return nil
	}
	iso := t.Format("2006-01-02T15:04:05")
	return &iso
}

// ReadFile loads an exiftool JSON dump from disk.
func ReadFile(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exif file: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse exif file %s: %w", path, err)
	}
	return entries, nil
}

// WriteFile writes entries in the dump's formatting: two-space indent,
// non-ASCII and URL characters kept literal. Parent directories are created
// as needed.
func WriteFile(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode exif entries: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write exif file: %w", err)
	}
	return nil
}

// FilterBounds keeps the entries whose GPS position falls inside the bounds.
// Entries without usable coordinates are dropped.
func FilterBounds(entries []Entry, b geo.Bounds) []Entry {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		lat, lon, ok := e.Coordinates()
		if ok && b.Contains(lat, lon) {
			kept = append(kept, e)
		}
	}
	return kept
}

// Photos converts raw entries into photo records, silently dropping entries
// without usable GPS coordinates.
func Photos(entries []Entry) []models.Photo {
	photos := make([]models.Photo, 0, len(entries))
	for _, e := range entries {
		lat, lon, ok := e.Coordinates()
		if !ok {
			continue
		}
		photos = append(photos, models.Photo{
			Filename:  e.Filename(),
			Directory: e.Directory(),
			Lon:       lon,
			Lat:       lat,
			Timestamp: e.Timestamp(),
		})
	}
	return photos
}

func coordinate(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
