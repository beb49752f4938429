package reactive

import (
	"slices"

	"github.com/juju/errors"
)

// scheduler batches effect re-runs onto the microtask queue.
//
// Each flush snapshots the pending effects and starts a new batch, so writes made while
// the snapshot runs land in the next batch. Effects carry the batch they were last
// queued in, which makes deduplication O(1).
type scheduler struct {
	rt         *Runtime
	pending    []*Effect
	batch      uint64
	queued     bool
	flushing   bool
	iterations int
	deferred   int
	task       func()
}

func newScheduler(rt *Runtime) *scheduler {
	s := &scheduler{rt: rt, batch: 1}
	s.task = func() {
		s.queued = false
		s.flush()
	}
	return s
}

func (s *scheduler) schedule(e *Effect) {
	if !e.active || e.running || e.stamp == s.batch {
		return
	}
	e.stamp = s.batch
	s.pending = append(s.pending, e)
	s.queue()
}

func (s *scheduler) queue() {
	if s.queued {
		return
	}
	s.queued = true
	s.rt.scheduler.QueueMicrotask(s.task)
}

func (s *scheduler) flush() {
	if s.flushing {
		return
	}
	s.flushing = true
	defer func() {
		s.flushing = false
	}()

	cfg := s.rt.cfg
	for len(s.pending) > 0 {
		// a remainder deferred by the flush cap is not a new generation of writes
		if len(s.pending) != s.deferred {
			if s.iterations >= cfg.MaxFlushIterations {
				s.dropRunaway()
				return
			}
			s.iterations++
		}
		s.deferred = 0

		batch := s.pending
		s.pending = nil
		s.batch++
		s.rt.metrics.flush()

		slices.SortStableFunc(batch, func(a, b *Effect) int {
			return a.level - b.level
		})

		if cfg.MaxFlushSize > 0 && len(batch) > cfg.MaxFlushSize {
			rest := batch[cfg.MaxFlushSize:]
			batch = batch[:cfg.MaxFlushSize]
			for _, e := range rest {
				e.stamp = s.batch
			}
			s.pending = rest
			s.deferred = len(rest)
			s.rt.log.V(1).Info("flush cap reached, deferring remainder", "ran", len(batch), "deferred", len(rest))
			s.runAll(batch)
			s.queue()
			return
		}
		s.runAll(batch)
	}
	s.iterations = 0
}

func (s *scheduler) runAll(batch []*Effect) {
	for _, e := range batch {
		if !e.active || !e.ShouldRun() {
			s.rt.metrics.skip()
			continue
		}
		if err := s.runIsolated(e); err != nil {
			s.rt.metrics.fail()
			s.rt.reportError(e, err)
		}
	}
}

// runIsolated turns a panic into an error so one effect cannot abort its siblings.
func (s *scheduler) runIsolated(e *Effect) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Annotatef(ErrEffectPanic, "effect %d: %v", e.id, r)
		}
	}()
	return errors.Trace(e.Run())
}

func (s *scheduler) dropRunaway() {
	dropped := len(s.pending)
	s.pending = nil
	s.batch++
	s.iterations = 0
	s.deferred = 0

	s.rt.metrics.drop(dropped)
	err := errors.Annotatef(ErrRunawayCascade, "dropped %d effects after %d flush iterations", dropped, s.rt.cfg.MaxFlushIterations)
	s.rt.log.Error(err, "effects keep scheduling each other, pending work discarded")
	s.rt.reportError(nil, err)
}
