// Command uploader pushes a saved-places file and photo-metadata dumps
// into the storage bucket the watcher listens on. Uploading a dump under
// the exif/ prefix is what triggers a matching run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tabimap/internal/env"
	"tabimap/internal/storage"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	env.LoadEnv()

	bucket := flag.String("bucket", env.GetEnvDefault("DATA_BUCKET", "tabimap"), "target bucket")
	places := flag.String("places", "", "saved-places GeoJSON file to upload")
	placesKey := flag.String("places-key", env.GetEnvDefault("PLACES_KEY", "takeout/SavedPlaces.json"), "object key for the saved-places file")
	exifPrefix := flag.String("exif-prefix", env.GetEnvDefault("EXIF_PREFIX", "exif/"), "key prefix for photo-metadata dumps")
	flag.Parse()

	if *places == "" && flag.NArg() == 0 {
		log.Fatal().Msg("nothing to upload: pass -places and/or photo-metadata files as arguments")
	}

	ctx := context.Background()
	start := time.Now()

	store, err := storage.NewService(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("create storage service")
	}
	if err := store.EnsureBucket(ctx, *bucket, ""); err != nil {
		log.Fatal().Err(err).Str("bucket", *bucket).Msg("ensure bucket")
	}

	uploaded := 0
	if *places != "" {
		if err := store.Upload(ctx, *bucket, *placesKey, *places); err != nil {
			log.Fatal().Err(err).Msg("upload saved places")
		}
		uploaded++
	}
	for _, dump := range flag.Args() {
		key := *exifPrefix + path.Base(dump)
		if err := store.Upload(ctx, *bucket, key, dump); err != nil {
			log.Fatal().Err(err).Str("file", dump).Msg("upload photo metadata")
		}
		uploaded++
	}

	fmt.Printf("Uploaded %d objects to %s in %s\n", uploaded, *bucket, time.Since(start).Round(time.Millisecond))
}
