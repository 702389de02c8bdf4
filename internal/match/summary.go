package match

import "sort"

// Summary aggregates one matching run.
type Summary struct {
	TotalPlaces       int            `json:"total_places"`
	PlacesWithMatches int            `json:"places_with_matches"`
	TotalMatches      int            `json:"total_matches"`
	PlaceSummaries    []PlaceSummary `json:"place_summaries"`
}

// PlaceSummary is one row of the per-place breakdown. Earliest and Latest are
// the ISO-8601 bounds over the matched photos that carried a timestamp; both
// are nil when none did.
type PlaceSummary struct {
	Name          string  `json:"name"`
	Address       *string `json:"address"`
	Prefecture    *string `json:"prefecture"`
	GoogleMapsURL *string `json:"google_maps_url"`
	MatchCount    int     `json:"match_count"`
	Earliest      *string `json:"earliest"`
	Latest        *string `json:"latest"`
}

// Summarize aggregates a result. Groups without matches count toward
// TotalPlaces but produce no summary row. Rows are ordered by descending
// match count; equal counts keep first-seen place order. ISO-8601 timestamps
// order correctly as plain strings, so the time range needs no parsing.
func Summarize(result *Result) Summary {
	s := Summary{
		TotalPlaces:    len(result.Groups),
		PlaceSummaries: make([]PlaceSummary, 0, len(result.Groups)),
	}
	for _, g := range result.Groups {
		if len(g.Matches) == 0 {
			continue
		}
		s.PlacesWithMatches++
		s.TotalMatches += len(g.Matches)

		var earliest, latest *string
		for _, m := range g.Matches {
			if m.Timestamp == nil || *m.Timestamp == "" {
				continue
			}
			if earliest == nil || *m.Timestamp < *earliest {
				earliest = m.Timestamp
			}
			if latest == nil || *m.Timestamp > *latest {
				latest = m.Timestamp
			}
		}

		s.PlaceSummaries = append(s.PlaceSummaries, PlaceSummary{
			Name:          g.Place.Name,
			Address:       g.Place.Address,
			Prefecture:    g.Place.Prefecture,
			GoogleMapsURL: g.Place.GoogleMapsURL,
			MatchCount:    len(g.Matches),
			Earliest:      earliest,
			Latest:        latest,
		})
	}
	sort.SliceStable(s.PlaceSummaries, func(i, j int) bool {
		return s.PlaceSummaries[i].MatchCount > s.PlaceSummaries[j].MatchCount
	})
	return s
}
