package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/citymove/identity-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ScoreQueue recomputes completion scores off the request path. Account ids
// are sharded onto a fixed set of workers by consistent hashing, so
// recomputations for the same account never run concurrently.
type ScoreQueue struct {
	workers []chan string
	scorer  ports.ScoreService
	log     zerolog.Logger
}

// NewScoreQueue creates a ScoreQueue with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewScoreQueue(numWorkers int, scorer ports.ScoreService, log zerolog.Logger) *ScoreQueue {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	q := &ScoreQueue{
		workers: make([]chan string, numWorkers),
		scorer:  scorer,
		log:     log,
	}
	for i := range q.workers {
		q.workers[i] = make(chan string, channelBuffer)
	}
	return q
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (q *ScoreQueue) Start(ctx context.Context) {
	for i, ch := range q.workers {
		go q.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules a score recomputation for one account. The call is
// non-blocking up to channelBuffer capacity.
func (q *ScoreQueue) Enqueue(accountID string) {
	q.workers[q.shardIndex(accountID)] <- accountID
}

// shardIndex maps an account id deterministically to a worker index.
func (q *ScoreQueue) shardIndex(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32()) % len(q.workers)
}

func (q *ScoreQueue) runWorker(ctx context.Context, id int, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case accountID, ok := <-ch:
			if !ok {
				return
			}
			if _, err := q.scorer.Score(ctx, accountID); err != nil {
				q.log.Error().Err(err).
					Str("account_id", accountID).
					Int("worker_id", id).
					Msg("score recomputation failed")
			}
		}
	}
}
