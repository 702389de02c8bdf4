// Command reporter prints a metadata completeness report for a
// saved-places GeoJSON file.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tabimap/internal/report"
	"tabimap/internal/takeout"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	places := flag.String("places", "data/GoogleMaps/SavedPlaces.json", "saved-places GeoJSON file to inspect")
	flag.Parse()

	fc, err := takeout.ReadFile(*places)
	if err != nil {
		log.Fatal().Err(err).Str("places", *places).Msg("read saved places")
	}
	report.Analyze(fc).Render(os.Stdout)
}
