// Command visits copies photo evidence from a match report back onto the
// saved-places file: places with matched photos get visited=true and a
// visited_date taken from the earliest photo timestamp. With -db the same
// visits are recorded in the places database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tabimap/internal/backfill"
	"tabimap/internal/env"
	"tabimap/internal/match"
	"tabimap/internal/placedb"
	"tabimap/internal/takeout"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	env.LoadEnv()

	places := flag.String("places", "data/GoogleMaps/SavedPlaces.json", "saved-places GeoJSON file to update")
	matches := flag.String("matches", "data/photos/place_photo_matches.json", "match report produced by the matcher")
	output := flag.String("output", "", "output path (default: overwrite the places file)")
	force := flag.Bool("force", false, "overwrite visited flags and dates that are already set")
	appendNote := flag.Bool("append-note", false, "append a photo-evidence note to each visited place")
	useDB := flag.Bool("db", false, "also record visits in the places database (DATABASE_URL)")
	dryRun := flag.Bool("dry-run", false, "report changes without writing anything")
	flag.Parse()

	report, err := match.ReadReport(*matches)
	if err != nil {
		log.Fatal().Err(err).Str("matches", *matches).Msg("read match report")
	}
	lookup := backfill.VisitLookup(report)
	fmt.Printf("Loaded photo evidence for %d places.\n", len(lookup))

	fc, err := takeout.ReadFile(*places)
	if err != nil {
		log.Fatal().Err(err).Str("places", *places).Msg("read saved places")
	}

	ctx := context.Background()
	var stats backfill.VisitStats
	step := backfill.Visits(lookup, *force, *appendNote, &stats)
	for _, f := range fc.Features {
		if err := step(ctx, f); err != nil {
			log.Fatal().Err(err).Msg("apply visit")
		}
	}
	fmt.Printf("Visited flags set: %d, visited_date set: %d, notes updated: %d\n",
		stats.VisitedSet.Load(), stats.DatesSet.Load(), stats.NotesAppended.Load())

	if *useDB {
		recordInDatabase(ctx, lookup, *dryRun)
	}

	if *dryRun {
		fmt.Println("Dry run: no changes written.")
		return
	}
	dest := *output
	if dest == "" {
		dest = *places
	}
	if err := takeout.WriteFile(dest, fc); err != nil {
		log.Fatal().Err(err).Str("output", dest).Msg("write saved places")
	}
	fmt.Printf("Saved updates to %s\n", dest)
}

// recordInDatabase replays the visit evidence against Postgres, keyed the
// way the importer stores places (Maps URL, falling back to name). Keys
// without a photo timestamp are skipped, matching the file-side rule.
func recordInDatabase(ctx context.Context, lookup map[string]backfill.VisitSummary, dryRun bool) {
	keys := make([]string, 0, len(lookup))
	for key, summary := range lookup {
		if summary.Earliest == nil || *summary.Earliest == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if dryRun {
		fmt.Printf("Dry run: would record %d visits in the database.\n", len(keys))
		return
	}

	pool, err := placedb.Connect(ctx, env.MustGetEnv("DATABASE_URL"))
	if err != nil {
		log.Fatal().Err(err).Msg("connect to places database")
	}
	store := placedb.NewStore(log.Logger, pool)
	defer store.Close()

	var updated int64
	for _, key := range keys {
		n, err := store.RecordVisit(ctx, key, *lookup[key].Earliest)
		if err != nil {
			log.Fatal().Err(err).Str("key", key).Msg("record visit")
		}
		updated += n
	}
	fmt.Printf("Database rows updated: %d\n", updated)
}
