package usecase

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/clanwarfare/snapshot/internal/domain/snapshot"
)

const (
	sectionStatusSuccess = "success"
	sectionStatusFailed  = "failed"
	sectionStatusSkipped = "skipped"
)

// section is one unit of retrieval work. Its run function returns an
// apply closure rather than mutating the snapshot directly, so the
// snapshot is only ever touched single-threaded after the phase
// settles.
type section struct {
	name string
	// skip returns a non-empty reason when the section must not run.
	skip func() string
	run  func(ctx context.Context) (func(*snapshot.Snapshot), error)
}

// phase is a named group of sections. Sections within a phase run
// concurrently; phases run strictly in order.
type phase struct {
	name     string
	sections []section
}

type sectionOutcome struct {
	index      int
	name       string
	status     string
	skipReason string
	apply      func(*snapshot.Snapshot)
	err        error
	duration   time.Duration
}

// runPhase executes every section of one phase on the worker pool,
// cancelling the remainder as soon as one fails, then applies the
// surviving partials to snap in declaration order.
func (s *FetchService) runPhase(ctx context.Context, ph phase, snap *snapshot.Snapshot) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerCount := normalizeWorkerCount(s.cfg.MaxWorkers, len(ph.sections))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return crerr.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	results := make(chan sectionOutcome, len(ph.sections))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	var workers sync.WaitGroup
	for i, sec := range ph.sections {
		i, sec := i, sec
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			outcome := sectionOutcome{index: i, name: sec.name}

			if sec.skip != nil {
				if reason := sec.skip(); reason != "" {
					outcome.status = sectionStatusSkipped
					outcome.skipReason = reason
					skippedCount.Add(1)
					results <- outcome
					return
				}
			}

			if err := runCtx.Err(); err != nil {
				outcome.status = sectionStatusFailed
				outcome.err = err
				failedCount.Add(1)
				results <- outcome
				return
			}

			apply, err := sec.run(runCtx)
			outcome.duration = time.Since(start)
			if err != nil {
				outcome.status = sectionStatusFailed
				outcome.err = err
				failedCount.Add(1)
				cancel()
			} else {
				outcome.status = sectionStatusSuccess
				outcome.apply = apply
				successCount.Add(1)
			}
			results <- outcome
		}); err != nil {
			workers.Done()
			return crerr.Wrap(err, "submit section to worker pool")
		}
	}

	workers.Wait()
	close(results)

	outcomes := make([]sectionOutcome, 0, len(ph.sections))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].index < outcomes[j].index })

	for _, outcome := range outcomes {
		switch outcome.status {
		case sectionStatusSkipped:
			s.logger.InfoContext(ctx, "section skipped",
				"phase", ph.name, "section", outcome.name, "reason", outcome.skipReason)
		case sectionStatusFailed:
			s.logger.ErrorContext(ctx, "section failed",
				"phase", ph.name, "section", outcome.name, "error", outcome.err)
		default:
			s.logger.InfoContext(ctx, "section complete",
				"phase", ph.name, "section", outcome.name,
				"duration", outcome.duration.Round(time.Millisecond).String())
		}
	}

	s.logger.InfoContext(ctx, "phase settled",
		"phase", ph.name,
		"workers", workerCount,
		"success", successCount.Load(),
		"failed", failedCount.Load(),
		"skipped", skippedCount.Load())

	for _, outcome := range outcomes {
		if outcome.err != nil {
			return crerr.Wrapf(outcome.err, "section %s", outcome.name)
		}
	}
	for _, outcome := range outcomes {
		if outcome.apply != nil {
			outcome.apply(snap)
		}
	}

	return nil
}

func normalizeWorkerCount(requested, tasks int) int {
	if tasks < 1 {
		tasks = 1
	}
	if requested < 1 {
		requested = 4
	}
	return min(requested, tasks)
}
