// Package retention deletes session records older than a threshold.
// Age is computed from each record's storage last-modified time, so a
// session stays alive as long as it keeps receiving thoughts.
package retention

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/mindweave-dev/mindweave/pkg/store"
)

// DefaultMaxAgeDays is the retention threshold used when none is given.
const DefaultMaxAgeDays = 90

// deleteConcurrency bounds parallel deletions during a sweep.
const deleteConcurrency = 4

// Result reports the outcome of one sweep.
type Result struct {
	// Deleted is the number of session records removed.
	Deleted int `json:"deleted"`
	// Failed is the number of records whose deletion errored. A sweep
	// never aborts on one record's failure.
	Failed int `json:"failed,omitempty"`
	// MaxAgeDays is the threshold the sweep ran with.
	MaxAgeDays int `json:"max_age_days"`
	// Duration is how long the sweep took.
	Duration time.Duration `json:"-"`
	// FirstErr carries the first per-record deletion error, if any.
	FirstErr error `json:"-"`
}

// Sweeper enumerates sessions and deletes the stale ones.
type Sweeper struct {
	backend store.Backend
}

// NewSweeper creates a Sweeper over the given backend.
func NewSweeper(backend store.Backend) *Sweeper {
	return &Sweeper{backend: backend}
}

// Sweep deletes every session whose record was last modified more than
// maxAgeDays ago. A non-positive maxAgeDays falls back to
// DefaultMaxAgeDays. Deleting the current default session clears the
// default pointer through the store's delete-time cascade. Individual
// deletion failures are counted, not fatal; only enumeration failure
// aborts the sweep.
func (s *Sweeper) Sweep(ctx context.Context, maxAgeDays int) (Result, error) {
	if maxAgeDays <= 0 {
		maxAgeDays = DefaultMaxAgeDays
	}
	start := time.Now()
	cutoff := start.Add(-time.Duration(maxAgeDays) * 24 * time.Hour)

	sessions, err := s.backend.ListSessions(ctx)
	if err != nil {
		return Result{MaxAgeDays: maxAgeDays, Duration: time.Since(start)}, err
	}

	var stale []string
	for _, sess := range sessions {
		if sess.UpdatedAt.Before(cutoff) {
			stale = append(stale, sess.ID)
		}
	}

	var (
		mu       sync.Mutex
		deleted  int
		failed   int
		firstErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)
	for _, id := range stale {
		g.Go(func() error {
			err := s.backend.DeleteSession(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if firstErr == nil {
					firstErr = err
				}
				// Keep sweeping; the record is retried on the next run.
				return nil
			}
			deleted++
			return nil
		})
	}
	_ = g.Wait()

	return Result{
		Deleted:    deleted,
		Failed:     failed,
		MaxAgeDays: maxAgeDays,
		Duration:   time.Since(start),
		FirstErr:   firstErr,
	}, nil
}

// Scheduler runs sweeps on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	sweeper    *Sweeper
	maxAgeDays int

	// OnResult, when set, observes every scheduled sweep's outcome.
	OnResult func(Result)
}

// NewScheduler creates a Scheduler that sweeps per the cron spec
// (standard 5-field format, e.g. "0 3 * * *" for 03:00 daily).
func NewScheduler(sweeper *Sweeper, spec string, maxAgeDays int) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(),
		sweeper:    sweeper,
		maxAgeDays: maxAgeDays,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins scheduled sweeping in the cron goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and returns a context that closes when any
// in-flight sweep finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) run() {
	res, err := s.sweeper.Sweep(context.Background(), s.maxAgeDays)
	if err != nil {
		log.Printf("retention sweep failed: %v", err)
		return
	}
	if res.Deleted > 0 || res.Failed > 0 {
		log.Printf("retention sweep: deleted=%d failed=%d threshold=%dd", res.Deleted, res.Failed, res.MaxAgeDays)
	}
	if s.OnResult != nil {
		s.OnResult(res)
	}
}
