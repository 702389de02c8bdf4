package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tabimap/internal/exif"
	"tabimap/internal/takeout"
	"tabimap/models"
	"tabimap/pkg/geo"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	source := flag.String("source", "", "input file (default: data/GoogleMaps/SavedPlaces.json, or data/photos/all_exif.json with -exif)")
	exifMode := flag.Bool("exif", false, "treat the source as an EXIF entry list and filter it to the bounds")
	outputInside := flag.String("output-inside", "data/GoogleMaps/SavedPlacesJapanByCoords.json", "where to write features inside the bounds")
	outputOutside := flag.String("output-outside", "data/GoogleMaps/SavedPlacesOutsideJapan.json", "where to write features outside the bounds")
	output := flag.String("output", "data/photos/japan_exif.json", "where to write filtered EXIF entries (with -exif)")
	boundsFlag := flag.String("bounds", "", "override the Japan box as minLat,maxLat,minLon,maxLon")
	dryRun := flag.Bool("dry-run", false, "print counts without writing files")
	flag.Parse()

	bounds := geo.Japan
	if *boundsFlag != "" {
		var err error
		bounds, err = geo.ParseBounds(*boundsFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid bounds")
		}
	}

	if *exifMode {
		filterExif(pickSource(*source, "data/photos/all_exif.json"), *output, bounds, *dryRun)
		return
	}
	splitPlaces(pickSource(*source, "data/GoogleMaps/SavedPlaces.json"), *outputInside, *outputOutside, bounds, *dryRun)
}

func pickSource(flagValue, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	return fallback
}

func splitPlaces(source, insidePath, outsidePath string, bounds geo.Bounds, dryRun bool) {
	fc, err := takeout.ReadFile(source)
	if err != nil {
		log.Fatal().Err(err).Msg("load saved places")
	}

	inside, outside, missing := takeout.SplitByBounds(fc, bounds)
	fmt.Printf("Total features: %d\n", len(fc.Features))
	fmt.Printf("Inside bounds: %d\n", len(inside))
	fmt.Printf("Outside bounds: %d\n", len(outside))
	fmt.Printf("Missing/invalid coordinates: %d\n", len(missing))

	if dryRun {
		return
	}

	if err := takeout.WriteFile(insidePath, collection(inside)); err != nil {
		log.Fatal().Err(err).Msg("write inside features")
	}
	// Features without coordinates travel with the outside set so nothing is
	// dropped between the two output files.
	if err := takeout.WriteFile(outsidePath, collection(append(outside, missing...))); err != nil {
		log.Fatal().Err(err).Msg("write outside features")
	}
}

func filterExif(source, outputPath string, bounds geo.Bounds, dryRun bool) {
	entries, err := exif.ReadFile(source)
	if err != nil {
		log.Fatal().Err(err).Msg("load exif entries")
	}

	filtered := exif.FilterBounds(entries, bounds)
	fmt.Printf("Total entries: %d\n", len(entries))
	fmt.Printf("Entries within bounds: %d\n", len(filtered))

	if dryRun {
		return
	}
	if err := exif.WriteFile(outputPath, filtered); err != nil {
		log.Fatal().Err(err).Msg("write filtered entries")
	}
	fmt.Printf("Filtered entries written to %s\n", outputPath)
}

func collection(features []*models.Feature) *models.FeatureCollection {
	return &models.FeatureCollection{Type: "FeatureCollection", Features: features}
}
