// Command importer mirrors a saved-places GeoJSON file into Postgres and
// runs the surrounding database chores: clearing old rows, pruning places
// with unusable coordinates, and exporting the tables to CSV. Each flag
// selects one operation; they run in clear, import, prune, export order.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tabimap/internal/env"
	"tabimap/internal/placedb"
	"tabimap/internal/takeout"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	env.LoadEnv()

	places := flag.String("places", "", "saved-places GeoJSON file to import (omit to skip importing)")
	clearFirst := flag.Bool("clear", false, "delete existing rows first")
	prune := flag.Bool("prune", false, "delete places with missing or zero coordinates")
	export := flag.String("export", "", "directory to export the database CSV files into")
	flag.Parse()

	if *places == "" && !*clearFirst && !*prune && *export == "" {
		log.Fatal().Msg("nothing to do: pass -places, -clear, -prune, or -export")
	}

	ctx := context.Background()
	pool, err := placedb.Connect(ctx, env.MustGetEnv("DATABASE_URL"))
	if err != nil {
		log.Fatal().Err(err).Msg("connect to places database")
	}
	store := placedb.NewStore(log.Logger, pool)
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("prepare schema")
	}

	if *clearFirst {
		if err := store.Clear(ctx); err != nil {
			log.Fatal().Err(err).Msg("clear database")
		}
		fmt.Println("[OK] Cleared existing data")
	}
	if *places != "" {
		runImport(ctx, store, *places)
	}
	if *prune {
		runPrune(ctx, store)
	}
	if *export != "" {
		runExport(ctx, store, *export)
	}
}

func runImport(ctx context.Context, store *placedb.Store, path string) {
	fmt.Println("[START] Starting SavedPlaces import...")
	fc, err := takeout.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("places", path).Msg("read saved places")
	}
	fmt.Printf("[INFO] Found %d places in %s\n", len(fc.Features), filepath.Base(path))

	stats, err := store.Import(ctx, fc)
	if err != nil {
		log.Fatal().Err(err).Msg("import places")
	}
	fmt.Printf("[OK] Imported %d places\n", stats.Imported)
	fmt.Printf("[WARN] Skipped %d places (missing name/coordinates or duplicates)\n", stats.Skipped)
	fmt.Println("[DONE] Import completed!")
}

func runPrune(ctx context.Context, store *placedb.Store) {
	invalid, err := store.PruneInvalidCoordinates(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("prune invalid coordinates")
	}
	if len(invalid) == 0 {
		fmt.Println("[INFO] No places with invalid coordinates found")
		return
	}
	fmt.Printf("Found %d places with invalid coordinates:\n", len(invalid))
	for _, p := range invalid {
		fmt.Printf("  - %s (lon: %s, lat: %s)\n", p.Name, floatOrNull(p.Longitude), floatOrNull(p.Latitude))
	}
	fmt.Printf("\n[DONE] Deleted %d places with invalid coordinates\n", len(invalid))
}

func runExport(ctx context.Context, store *placedb.Store, dir string) {
	stats, err := store.ExportCSV(ctx, dir)
	if err != nil {
		log.Fatal().Err(err).Msg("export database")
	}
	fmt.Printf("Exported %d places to %s\n", stats.Places, filepath.Join(dir, "places.csv"))
	fmt.Printf("Exported %d regions to %s\n", stats.Regions, filepath.Join(dir, "regions.csv"))

	summary, err := store.Summary(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("summarize database")
	}
	rule := strings.Repeat("=", 60)
	fmt.Println("\n" + rule)
	fmt.Println("DATABASE SUMMARY")
	fmt.Println(rule)
	for _, row := range summary {
		fmt.Printf("%s: %d\n", placedb.TitleMetric(row.Metric), row.Count)
	}
	fmt.Println(rule)
}

func floatOrNull(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
