// Package service contains helpers used by application services.
// In particular, it provides an Iterator that consumes storage events from a
// message source (e.g., Kafka via pkg/kafkaclient) and loads the referenced
// objects from S3/MinIO using a pluggable LoaderFunc.
package service

import (
	"context"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/rs/zerolog"
)

// Iterator consumes messages from a MessageIterator, interprets each message
// as a MinIO/S3 notification, loads every referenced object via LoaderFunc,
// and yields FetchedObject items on a channel. It is generic over the loaded
// item type T.
//
// The Iterator does not manage the lifecycle of the underlying message source;
// callers should start/stop their consumer outside and pass in an implementation
// of MessageIterator.
type Iterator[T any] struct {
	log         zerolog.Logger
	msgIterator MessageIterator
	loader      LoaderFunc[T]
	filter      func(bucket, key string) bool
}

// NewIterator constructs an Iterator for the provided message source and
// object loader. The iterator is stateless and safe to use from a single
// goroutine; it spawns a goroutine per Objects() call to stream results.
func NewIterator[T any](log zerolog.Logger, iterator MessageIterator, loader LoaderFunc[T]) *Iterator[T] {
	return &Iterator[T]{
		log:         log,
		msgIterator: iterator,
		loader:      loader,
	}
}

// WithFilter restricts the iterator to objects the predicate accepts. Records
// that are filtered out still count as processed, so their message is
// committed.
func (it *Iterator[T]) WithFilter(filter func(bucket, key string) bool) *Iterator[T] {
	it.filter = filter
	return it
}

// Objects starts a goroutine that:
//  1. Receives messages from the underlying MessageIterator
//  2. Deserializes each message as a MinIO notification
//  3. Loads every object the notification references using the LoaderFunc
//  4. Emits a FetchedObject[T] per loaded object on the returned channel
//  5. Commits the message offset once all its records are handled
//
// Malformed payloads and undecodable keys are logged and skipped. A failed
// object load leaves the message uncommitted so it is delivered again.
// The output channel is closed when the underlying Messages() channel is
// closed or the context is canceled.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *FetchedObject[T] {
	out := make(chan *FetchedObject[T])
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			var event notification.Info
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				it.log.Warn().Err(err).Msg("skipping message with malformed event payload")
				continue
			}
			if len(event.Records) == 0 {
				it.log.Debug().Msg("event carries no records, skipping")
				continue
			}

			failed := false
			for _, record := range event.Records {
				bucket := record.S3.Bucket.Name
				key, err := url.QueryUnescape(record.S3.Object.Key)
				if err != nil {
					it.log.Warn().Err(err).Str("key", record.S3.Object.Key).Msg("cannot decode object key")
					continue
				}
				if it.filter != nil && !it.filter(bucket, key) {
					it.log.Debug().Str("bucket", bucket).Str("key", key).Msg("object filtered out")
					continue
				}

				data, err := it.loader(ctx, bucket, key)
				if err != nil {
					it.log.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("failed to load object")
					failed = true
					continue
				}

				select {
				case out <- &FetchedObject[T]{Data: data, Bucket: bucket, Key: key, Event: record}:
				case <-ctx.Done():
					return
				}
			}

			// Leave the offset alone after a load failure so the message
			// comes around again.
			if failed {
				continue
			}
			if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
				it.log.Warn().Err(err).Msg("failed to commit offset")
			}
		}
	}()
	return out
}
