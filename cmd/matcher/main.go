package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tabimap/internal/exif"
	"tabimap/internal/match"
	"tabimap/internal/takeout"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	placesPath := flag.String("places", "data/GoogleMaps/SavedPlaces.json", "saved-places GeoJSON file")
	exifPath := flag.String("exif", "data/photos/japan_exif.json", "filtered EXIF JSON file")
	radius := flag.Float64("radius", 100, "matching radius in meters")
	maxPerPhoto := flag.Int("max-per-photo", 1, "maximum matches per photo (0 for unlimited)")
	output := flag.String("output", "data/photos/place_photo_matches.json", "where to write match results")
	dryRun := flag.Bool("dry-run", false, "only print the summary, do not write the output file")
	flag.Parse()

	opts := match.Options{RadiusMeters: *radius, MaxPerPhoto: *maxPerPhoto}
	if err := opts.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid matching options")
	}

	fc, err := takeout.ReadFile(*placesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load saved places")
	}
	entries, err := exif.ReadFile(*exifPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load exif entries")
	}

	places := takeout.Places(fc)
	photos := exif.Photos(entries)
	fmt.Printf("Loaded %d places and %d photos.\n", len(places), len(photos))

	report := match.BuildReport(match.Run(places, photos, opts))

	fmt.Printf("Places with photo matches: %d / %d\n", report.Summary.PlacesWithMatches, report.Summary.TotalPlaces)
	fmt.Printf("Total photo-place pairs: %d\n", report.Summary.TotalMatches)
	fmt.Printf("Unmatched photos: %d\n", len(report.UnmatchedPhotos))

	if *dryRun {
		fmt.Println("Dry run: not writing output file.")
		return
	}
	if err := report.WriteFile(*output); err != nil {
		log.Fatal().Err(err).Msg("write match report")
	}
	fmt.Printf("Match results written to %s\n", *output)
}
