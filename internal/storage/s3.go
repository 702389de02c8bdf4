// Package storage is the S3/MinIO client layer: it fetches uploaded takeout
// and photo-metadata objects and stores finished match reports.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"tabimap/internal/exif"
	"tabimap/internal/match"
	"tabimap/models"
)

// Service is a client for S3-compatible storage.
type Service struct {
	log    zerolog.Logger
	client *minio.Client
}

// NewService initializes and returns a new storage service.
// It connects to the MinIO server using credentials from environment variables.
func NewService(log zerolog.Logger) (*Service, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("missing one or more required environment variables: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	log.Info().Str("endpoint", endpoint).Msg("connected to MinIO")
	return &Service{log: log, client: client}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Service) EnsureBucket(ctx context.Context, bucket, region string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		s.log.Info().Str("bucket", bucket).Msg("created bucket")
	}
	return nil
}

// Upload copies a local file into the bucket under the given key.
func (s *Service) Upload(ctx context.Context, bucket, key, path string) error {
	info, err := s.client.FPutObject(ctx, bucket, key, path, minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("upload %s to %s/%s: %w", path, bucket, key, err)
	}
	s.log.Info().Str("bucket", bucket).Str("key", key).Int64("size", info.Size).Msg("uploaded object")
	return nil
}

// FetchPlaces retrieves a saved-places GeoJSON object and decodes it.
func (s *Service) FetchPlaces(ctx context.Context, bucket, key string) (*models.FeatureCollection, error) {
	object, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer object.Close()

	// Stream the JSON directly from the reader.
	var fc models.FeatureCollection
	if err := json.NewDecoder(object).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode saved places %s/%s: %w", bucket, key, err)
	}

	s.log.Debug().Str("bucket", bucket).Str("key", key).Int("features", len(fc.Features)).Msg("fetched saved places")
	return &fc, nil
}

// FetchExif retrieves a photo-metadata dump (an exiftool JSON array) and
// decodes it.
func (s *Service) FetchExif(ctx context.Context, bucket, key string) ([]exif.Entry, error) {
	object, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer object.Close()

	var entries []exif.Entry
	if err := json.NewDecoder(object).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode photo metadata %s/%s: %w", bucket, key, err)
	}

	s.log.Debug().Str("bucket", bucket).Str("key", key).Int("entries", len(entries)).Msg("fetched photo metadata")
	return entries, nil
}

// StoreReport writes a match report under the given key. An existing object is
// left untouched, so a replayed storage event does not overwrite the report
// its first delivery produced.
func (s *Service) StoreReport(ctx context.Context, bucket, key string, report *match.Report) error {
	_, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		s.log.Info().Str("bucket", bucket).Str("key", key).Msg("report already exists, ignoring write")
		return nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("failed to check for existing object: %w", err)
	}

	data, err := report.JSON()
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(
		ctx,
		bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("store report %s/%s: %w", bucket, key, err)
	}

	s.log.Info().Str("bucket", bucket).Str("key", key).Msg("stored match report")
	return nil
}
