package enrich

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Pipeline coordinates the execution of a sequence of stages for items flowing
// through a channel. For each incoming item, steps within the same stage run in
// parallel, and stages themselves run sequentially. Any step errors are logged
// and do not stop processing of the current item.
//
// Pipeline is generic over the item type T.
type Pipeline[T any] struct {
	log    zerolog.Logger
	stages []Stage[T]
}

// NewPipeline constructs a Pipeline from the provided stages. Stages will be
// applied to each item in order.
func NewPipeline[T any](log zerolog.Logger, stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{log: log, stages: stages}
}

// Process consumes items from the input channel and applies every stage to each
// item before taking the next one. For each item:
//   - All steps in a stage are started concurrently and must complete before
//     moving to the next stage (a stage barrier).
//   - Errors returned by steps are logged and ignored so the pipeline can
//     continue processing.
//   - The provided context can be observed by steps for cancellation; the
//     pipeline itself keeps running until the input channel is closed.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) {
	for item := range in {
		// Execute each stage sequentially. Within a stage, run each step in its
		// own goroutine
		for _, stage := range p.stages {
			var wg sync.WaitGroup
			for _, step := range stage.steps {
				wg.Add(1)
				go func(step Step[T]) {
					defer wg.Done()
					if err := step(ctx, item); err != nil {
						p.log.Warn().Err(err).Msg("enrichment step failed")
					}
				}(step)
			}
			wg.Wait() // stage barrier: ensure all steps finished before the next stage
		}
	}
}
