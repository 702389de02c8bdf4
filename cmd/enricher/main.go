// Command enricher backfills missing metadata on a saved-places GeoJSON
// file: default properties, coordinates recovered from Google Maps URLs,
// prefectures derived from addresses, country codes for features inside
// the Japan box, and (opt-in) Nominatim geocoding for features that still
// have no usable position.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tabimap/internal/backfill"
	"tabimap/internal/enrich"
	"tabimap/internal/env"
	"tabimap/internal/takeout"
	"tabimap/models"
	"tabimap/pkg/geo"
	"tabimap/pkg/location"
)

// stepOrder fixes the sequence steps run in; -steps only selects among them.
// Later steps read fields the earlier ones write, so each step gets its own
// stage and the order never changes.
var stepOrder = []string{"defaults", "url-coords", "prefecture", "country-code", "geocode"}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	env.LoadEnv()

	source := flag.String("source", "data/GoogleMaps/SavedPlaces.json", "saved-places GeoJSON file to enrich")
	output := flag.String("output", "", "output path (default: overwrite the source file)")
	steps := flag.String("steps", "defaults,url-coords,prefecture,country-code", "comma-separated steps to run (available: "+strings.Join(stepOrder, ",")+")")
	force := flag.Bool("force", false, "overwrite prefecture values that are already set")
	targetCountry := flag.String("target-country", "JP", "country code assigned to features inside the bounds")
	boundsFlag := flag.String("bounds", "", "override the Japan box as minLat,maxLat,minLon,maxLon")
	urlHints := flag.String("url-substrings", "", "comma-separated substrings; a google_maps_url containing one also gets the country code")
	addressHints := flag.String("address-substrings", "", "comma-separated substrings; an address containing one also gets the country code")
	dryRun := flag.Bool("dry-run", false, "report changes without writing the file")
	flag.Parse()

	selected, err := parseSteps(*steps)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -steps value")
	}

	bounds := geo.Japan
	if *boundsFlag != "" {
		bounds, err = geo.ParseBounds(*boundsFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -bounds value")
		}
	}

	fc, err := takeout.ReadFile(*source)
	if err != nil {
		log.Fatal().Err(err).Str("source", *source).Msg("read saved places")
	}

	var stats backfill.Stats
	var stages []enrich.Stage[models.Feature]
	for _, name := range stepOrder {
		if !selected[name] {
			continue
		}
		switch name {
		case "defaults":
			stages = append(stages, enrich.NewStage(backfill.Defaults(&stats)))
		case "url-coords":
			stages = append(stages, enrich.NewStage(backfill.URLCoordinates(&stats)))
		case "prefecture":
			stages = append(stages, enrich.NewStage(backfill.Prefecture(*force, &stats)))
		case "country-code":
			stages = append(stages, enrich.NewStage(backfill.CountryCode(bounds, *targetCountry, splitList(*urlHints), splitList(*addressHints), &stats)))
		case "geocode":
			client, cleanup := geocodeClient()
			defer cleanup()
			stages = append(stages, enrich.NewStage(backfill.Geocode(client, &stats)))
		}
	}
	if len(stages) == 0 {
		log.Fatal().Msg("no steps selected")
	}

	pipeline := enrich.NewPipeline(log.Logger, stages...)
	in := make(chan *models.Feature)
	go func() {
		defer close(in)
		for _, f := range fc.Features {
			in <- f
		}
	}()
	pipeline.Process(context.Background(), in)

	fmt.Printf("Features processed: %d\n", len(fc.Features))
	if selected["defaults"] {
		fmt.Printf("Metadata fields added: %d\n", stats.DefaultsAdded.Load())
	}
	if selected["url-coords"] {
		fmt.Printf("Coordinates extracted from URL: %d\n", stats.CoordsFromURL.Load())
	}
	if selected["prefecture"] {
		fmt.Printf("Prefectures updated: %d (already set: %d, unmatched: %d)\n",
			stats.PrefecturesSet.Load(), stats.PrefecturesKept.Load(), stats.PrefecturesMissed.Load())
	}
	if selected["country-code"] {
		fmt.Printf("Missing country_code before update: %d\n", stats.CountryMissing.Load())
		fmt.Printf("Updated to %s: %d\n", *targetCountry, stats.CountryCodesSet.Load())
	}
	if selected["geocode"] {
		fmt.Printf("Geocoded: %d (no result: %d)\n", stats.Geocoded.Load(), stats.GeocodeMisses.Load())
	}

	if *dryRun {
		fmt.Println("Dry run: no changes written.")
		return
	}
	dest := *output
	if dest == "" {
		dest = *source
	}
	if err := takeout.WriteFile(dest, fc); err != nil {
		log.Fatal().Err(err).Str("output", dest).Msg("write enriched places")
	}
	fmt.Printf("Written updated GeoJSON to %s\n", dest)
}

func parseSteps(s string) (map[string]bool, error) {
	known := make(map[string]bool, len(stepOrder))
	for _, name := range stepOrder {
		known[name] = true
	}
	selected := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if !known[name] {
			return nil, fmt.Errorf("unknown step %q", name)
		}
		selected[name] = true
	}
	return selected, nil
}

// geocodeClient builds the Nominatim client, honoring NOMINATIM_BASE_URL and
// keeping responses in a local cache so reruns do not repeat lookups.
func geocodeClient() (*location.Client, func()) {
	client := location.NewClient(log.Logger)
	if base := env.GetEnvDefault("NOMINATIM_BASE_URL", ""); base != "" {
		client = client.WithBaseURL(base)
	}
	cacheDir := env.GetEnvDefault("GEOCODE_CACHE_DIR", "data/geocode-cache")
	cache, err := location.OpenCache(cacheDir)
	if err != nil {
		log.Warn().Err(err).Str("dir", cacheDir).Msg("geocode cache unavailable, continuing without it")
		return client, func() {}
	}
	return client.WithCache(cache), func() {
		if err := cache.Close(); err != nil {
			log.Warn().Err(err).Msg("close geocode cache")
		}
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
