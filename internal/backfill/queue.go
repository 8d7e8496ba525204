package backfill

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/smerrill/playsync/internal/service"
	"github.com/smerrill/playsync/internal/track"
)

// Interval is the fixed delay between replay submissions.
const Interval = 500 * time.Millisecond

// Task is one detected gap: a play to replay to the service that is
// missing it. Tasks live in memory only and are consumed exactly once.
type Task struct {
	Track  track.Record
	Target string // Service the play is missing from
	Reason string
}

// Stats tallies per-task outcomes for one run. Failed tasks are not
// retried.
type Stats struct {
	Succeeded int
	Failed    int
}

// Queue is the serialized backfill repair queue. Producers append
// tasks; a single worker drains them one at a time with a fixed delay
// between submissions. The task list is guarded by one mutex so
// appends and drains never race.
type Queue struct {
	adapters map[string]service.Adapter
	journal  *Journal // optional outcome journal
	logger   zerolog.Logger
	limiter  *rate.Limiter

	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []Task
	stats  Stats
	closed bool

	stopped chan struct{}
}

// NewQueue creates a backfill queue over the given adapters. The
// journal may be nil.
func NewQueue(adapters map[string]service.Adapter, journal *Journal, logger zerolog.Logger) *Queue {
	q := &Queue{
		adapters: adapters,
		journal:  journal,
		logger:   logger.With().Str("component", "backfill").Logger(),
		limiter:  rate.NewLimiter(rate.Every(Interval), 1),
		stopped:  make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Start launches the worker goroutine. The queue drains detached from
// whichever refresh produced its tasks; ctx bounds only the replay
// calls themselves.
func (q *Queue) Start(ctx context.Context) {
	go q.run(ctx)
}

// Enqueue appends a task. Safe to call from any goroutine; a closed
// queue drops the task.
func (q *Queue) Enqueue(task Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.logger.Warn().
			Str("target", task.Target).
			Str("track", task.Track.Name).
			Msg("Queue closed, dropping backfill task")
		return
	}

	q.tasks = append(q.tasks, task)
	q.cond.Signal()
}

// Pending returns the number of tasks waiting to be processed.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Stats returns the outcome tally so far.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

// Close stops intake and blocks until every queued task has been
// processed and the worker has exited.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()

	<-q.stopped
}

// run is the worker loop: pop one task, replay it, wait out the rate
// limit, repeat.
func (q *Queue) run(ctx context.Context) {
	defer close(q.stopped)

	for {
		task, ok := q.next()
		if !ok {
			return
		}

		if err := q.limiter.Wait(ctx); err != nil {
			q.logger.Warn().Err(err).Msg("Backfill interrupted")
			return
		}

		q.process(ctx, task)
	}
}

// next blocks until a task is available or the queue is closed and
// empty.
func (q *Queue) next() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.tasks) == 0 && !q.closed {
		q.cond.Wait()
	}

	if len(q.tasks) == 0 {
		return Task{}, false
	}

	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	return task, true
}

// process replays one task and tallies the outcome.
func (q *Queue) process(ctx context.Context, task Task) {
	adapter, ok := q.adapters[task.Target]
	if !ok {
		q.record(ctx, task, service.ErrUnsupported)
		return
	}

	err := adapter.Replay(ctx, task.Track)
	q.record(ctx, task, err)
}

// record updates the tally and the journal with one task's outcome.
func (q *Queue) record(ctx context.Context, task Task, outcome error) {
	q.mu.Lock()
	if outcome != nil {
		q.stats.Failed++
	} else {
		q.stats.Succeeded++
	}
	q.mu.Unlock()

	if outcome != nil {
		q.logger.Warn().
			Err(outcome).
			Str("target", task.Target).
			Str("artist", task.Track.Artist).
			Str("track", task.Track.Name).
			Msg("Backfill failed")
	} else {
		q.logger.Info().
			Str("target", task.Target).
			Str("artist", task.Track.Artist).
			Str("track", task.Track.Name).
			Msg("Backfilled play")
	}

	if q.journal != nil {
		if err := q.journal.Record(ctx, task, outcome); err != nil {
			q.logger.Error().Err(err).Msg("Failed to journal backfill outcome")
		}
	}
}
