package match

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
)

// Report is the JSON document a matching run writes: per-place groups with
// their photos, the aggregate summary, and the photos that matched nothing.
type Report struct {
	Matches         []GroupReport    `json:"matches"`
	Summary         Summary          `json:"summary"`
	UnmatchedPhotos []UnmatchedPhoto `json:"unmatched_photos"`
}

// GroupReport is one place with its matched photos. Places that matched
// nothing still appear, with an empty photo list.
type GroupReport struct {
	Place  PlaceRecord  `json:"place"`
	Photos []PhotoMatch `json:"photos"`
}

// PlaceRecord is the place as reported, coordinates in GeoJSON [lon, lat]
// order.
type PlaceRecord struct {
	Name          string     `json:"name"`
	Address       *string    `json:"address"`
	Prefecture    *string    `json:"prefecture"`
	Category      *string    `json:"category"`
	SavedList     *string    `json:"saved_list"`
	GoogleMapsURL *string    `json:"google_maps_url"`
	Coordinates   [2]float64 `json:"coordinates"`
}

// UnmatchedPhoto is a photo that fell outside every place's radius.
type UnmatchedPhoto struct {
	Filename    string     `json:"filename"`
	Directory   string     `json:"directory"`
	Timestamp   *string    `json:"timestamp"`
	Coordinates [2]float64 `json:"coordinates"`
}

// BuildReport renders a result into the report document. Match groups are
// ordered by descending photo count with stable ties, mirroring the summary
// row order.
func BuildReport(result *Result) *Report {
	report := &Report{
		Matches:         make([]GroupReport, 0, len(result.Groups)),
		Summary:         Summarize(result),
		UnmatchedPhotos: make([]UnmatchedPhoto, 0, len(result.Unmatched)),
	}
	for _, g := range result.Groups {
		report.Matches = append(report.Matches, GroupReport{
			Place: PlaceRecord{
				Name:          g.Place.Name,
				Address:       g.Place.Address,
				Prefecture:    g.Place.Prefecture,
				Category:      g.Place.Category,
				SavedList:     g.Place.SavedList,
				GoogleMapsURL: g.Place.GoogleMapsURL,
				Coordinates:   [2]float64{g.Place.Lon, g.Place.Lat},
			},
			Photos: g.Matches,
		})
	}
	sort.SliceStable(report.Matches, func(i, j int) bool {
		return len(report.Matches[i].Photos) > len(report.Matches[j].Photos)
	})
	for _, p := range result.Unmatched {
		report.UnmatchedPhotos = append(report.UnmatchedPhotos, UnmatchedPhoto{
			Filename:    p.Filename,
			Directory:   p.Directory,
			Timestamp:   p.Timestamp,
			Coordinates: [2]float64{p.Lon, p.Lat},
		})
	}
	return report
}

// JSON renders the report as indented JSON. HTML escaping is off so Google
// Maps URLs keep their query separators.
func (r *Report) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode match report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the report to disk, creating parent directories as needed.
func (r *Report) WriteFile(path string) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write match report %s: %w", path, err)
	}
	return nil
}

// ReadReport loads a previously written report, for runs that feed matches
// back into the places file or the database.
func ReadReport(path string) (*Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read match report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("parse match report %s: %w", path, err)
	}
	return &report, nil
}
