// Command watcher is the long-running worker. It consumes storage events
// announcing freshly uploaded photo-metadata dumps, matches each dump
// against the saved-places object in the same bucket, and stores the match
// report back under a key derived from the dump's name.
package main

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tabimap/internal/env"
	"tabimap/internal/exif"
	"tabimap/internal/keys"
	"tabimap/internal/match"
	"tabimap/internal/service"
	"tabimap/internal/storage"
	"tabimap/internal/takeout"
	"tabimap/pkg/graceful"
	"tabimap/pkg/kafkaclient"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	env.LoadEnv()

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	broker := env.MustGetEnv("KAFKA_BROKER")
	topic := env.MustGetEnv("KAFKA_TOPIC")
	groupID := env.MustGetEnv("KAFKA_GROUP_ID")
	placesKey := env.GetEnvDefault("PLACES_KEY", "takeout/SavedPlaces.json")
	exifPrefix := env.GetEnvDefault("EXIF_PREFIX", "exif/")

	options := matchOptions()
	if err := options.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid match options")
	}

	log.Info().Str("broker", broker).Str("topic", topic).Str("group_id", groupID).Msg("connecting to Kafka")
	consumer, err := kafkaclient.NewConsumer(log.Logger, topic, groupID, broker)
	if err != nil {
		log.Fatal().Err(err).Msg("create Kafka consumer")
	}

	store, err := storage.NewService(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("create storage service")
	}

	consumer.StartConsuming(ctx)
	iterator := service.NewIterator(log.Logger, consumer, store.FetchExif).
		WithFilter(func(_, key string) bool {
			return strings.HasPrefix(key, exifPrefix) && strings.HasSuffix(key, ".json")
		})

	for obj := range iterator.Objects(ctx) {
		runLog := log.With().
			Str("run_id", uuid.NewString()).
			Str("bucket", obj.Bucket).
			Str("key", obj.Key).
			Logger()

		fc, err := store.FetchPlaces(ctx, obj.Bucket, placesKey)
		if err != nil {
			runLog.Error().Err(err).Str("places_key", placesKey).Msg("cannot load saved places, skipping dump")
			continue
		}

		places := takeout.Places(fc)
		photos := exif.Photos(obj.Data)
		report := match.BuildReport(match.Run(places, photos, options))
		runLog.Info().
			Int("places", len(places)).
			Int("photos", len(photos)).
			Int("matched_places", len(report.Matches)).
			Int("unmatched_photos", len(report.UnmatchedPhotos)).
			Msg("matched photo dump")

		reportKey := keys.Report(obj.Key)
		if err := store.StoreReport(ctx, obj.Bucket, reportKey, report); err != nil {
			runLog.Error().Err(err).Str("report_key", reportKey).Msg("failed to store report")
		}
	}

	consumer.Stop()
	log.Info().Msg("watcher stopped")
}

// matchOptions applies MATCH_RADIUS_METERS and MATCH_MAX_PER_PHOTO on top of
// the defaults so a deployment can widen the radius without a rebuild.
func matchOptions() match.Options {
	options := match.DefaultOptions()
	if raw := env.GetEnvDefault("MATCH_RADIUS_METERS", ""); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Fatal().Err(err).Str("value", raw).Msg("invalid MATCH_RADIUS_METERS")
		}
		options.RadiusMeters = radius
	}
	if raw := env.GetEnvDefault("MATCH_MAX_PER_PHOTO", ""); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatal().Err(err).Str("value", raw).Msg("invalid MATCH_MAX_PER_PHOTO")
		}
		options.MaxPerPhoto = limit
	}
	return options
}
