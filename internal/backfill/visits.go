package backfill

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"tabimap/internal/enrich"
	"tabimap/internal/keys"
	"tabimap/internal/match"
	"tabimap/models"
)

// VisitSummary is the photo evidence for one place key in a match report.
// Earliest and Latest are either both set or both nil.
type VisitSummary struct {
	Count    int
	Earliest *string
	Latest   *string
}

// VisitStats counts what a visits run changed.
type VisitStats struct {
	VisitedSet    atomic.Int64
	DatesSet      atomic.Int64
	NotesAppended atomic.Int64
}

// VisitLookup indexes a match report by place key, the same URL-else-name key
// the matcher groups on. Groups without photos carry no evidence and are left
// out.
func VisitLookup(report *match.Report) map[string]VisitSummary {
	lookup := make(map[string]VisitSummary, len(report.Matches))
	for _, g := range report.Matches {
		key := g.Place.Name
		if g.Place.GoogleMapsURL != nil && *g.Place.GoogleMapsURL != "" {
			key = *g.Place.GoogleMapsURL
		}
		if key == "" || len(g.Photos) == 0 {
			continue
		}
		var earliest, latest *string
		for _, p := range g.Photos {
			if p.Timestamp == nil || *p.Timestamp == "" {
				continue
			}
			if earliest == nil || *p.Timestamp < *earliest {
				earliest = p.Timestamp
			}
			if latest == nil || *p.Timestamp > *latest {
				latest = p.Timestamp
			}
		}
		lookup[key] = VisitSummary{Count: len(g.Photos), Earliest: earliest, Latest: latest}
	}
	return lookup
}

// Visits marks features with photo evidence as visited and stamps the
// earliest photo time as the visit date. Existing values win unless force is
// true; evidence without a single timestamp is skipped outright. With
// appendNote, a note describing the evidence is added to the notes field
// unless it is already there.
func Visits(lookup map[string]VisitSummary, force, appendNote bool, stats *VisitStats) enrich.Step[models.Feature] {
	return func(_ context.Context, f *models.Feature) error {
		if f.Properties == nil {
			f.Properties = make(map[string]any)
		}
		key := keys.Feature(f)
		summary, ok := lookup[key]
		if key == "" || !ok {
			return nil
		}
		if summary.Earliest == nil || *summary.Earliest == "" {
			return nil
		}

		visited, present := f.Properties["visited"]
		visitedTrue, _ := visited.(bool)
		if (force || !present || visited == nil) && !visitedTrue {
			f.Properties["visited"] = true
			stats.VisitedSet.Add(1)
		}

		date, hasDate := f.Properties["visited_date"]
		if force || !hasDate || date == nil || date == "" {
			f.Properties["visited_date"] = *summary.Earliest
			stats.DatesSet.Add(1)
		}

		if appendNote && summary.Count > 0 {
			note := fmt.Sprintf("Photos: %d (range %s – %s)", summary.Count, *summary.Earliest, *summary.Latest)
			existing, _ := f.Properties["notes"].(string)
			switch {
			case existing == "":
				f.Properties["notes"] = note
				stats.NotesAppended.Add(1)
			case !strings.Contains(existing, note):
				f.Properties["notes"] = existing + "\n" + note
				stats.NotesAppended.Add(1)
			}
		}
		return nil
	}
}
