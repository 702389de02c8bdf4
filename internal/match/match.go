// Package match pairs photo records with saved places by great-circle
// proximity and aggregates the outcome into reports.
package match

import (
	"math"
	"sort"

	"tabimap/internal/keys"
	"tabimap/models"
	"tabimap/pkg/geo"
)

// PhotoMatch records one photo assigned to a place. DistanceM is rounded to
// two decimals for reporting; ranking happens on the exact value.
type PhotoMatch struct {
	Filename  string  `json:"filename"`
	Directory string  `json:"directory"`
	Timestamp *string `json:"timestamp"`
	DistanceM float64 `json:"distance_m"`
}

// Group collects the matches for one place key. Place holds the last record
// seen for that key, so name collisions keep the later definition while the
// group itself keeps its first-seen position.
type Group struct {
	Place   models.Place
	Matches []PhotoMatch
}

// Result is the outcome of one matching run: one group per distinct place key
// in first-seen order, zero-match groups included, plus the photos that
// matched nothing.
type Result struct {
	Groups    []*Group
	Unmatched []models.Photo
}

// Run assigns every photo to its nearby places. Each photo is compared
// against the full place list; candidates within the radius (inclusive) are
// ranked by ascending distance with ties kept in place-list order, then
// capped by MaxPerPhoto. The same inputs always produce the same result.
func Run(places []models.Place, photos []models.Photo, opts Options) *Result {
	groups := make([]*Group, 0, len(places))
	byKey := make(map[string]*Group, len(places))
	for _, p := range places {
		key := keys.Place(p)
		g, ok := byKey[key]
		if !ok {
			g = &Group{Matches: make([]PhotoMatch, 0)}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.Place = p
	}

	type candidate struct {
		dist  float64
		place models.Place
	}

	unmatched := make([]models.Photo, 0)
	for _, photo := range photos {
		var cands []candidate
		for _, p := range places {
			d := geo.Haversine(photo.Lat, photo.Lon, p.Lat, p.Lon)
			if d <= opts.RadiusMeters {
				cands = append(cands, candidate{dist: d, place: p})
			}
		}
		if len(cands) == 0 {
			unmatched = append(unmatched, photo)
			continue
		}
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
		if opts.MaxPerPhoto > 0 && len(cands) > opts.MaxPerPhoto {
			cands = cands[:opts.MaxPerPhoto]
		}
		for _, c := range cands {
			g := byKey[keys.Place(c.place)]
			g.Matches = append(g.Matches, PhotoMatch{
				Filename:  photo.Filename,
				Directory: photo.Directory,
				Timestamp: photo.Timestamp,
				DistanceM: round2(c.dist),
			})
		}
	}

	return &Result{Groups: groups, Unmatched: unmatched}
}

func round2(d float64) float64 {
	return math.Round(d*100) / 100
}
