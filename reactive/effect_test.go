package reactive_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/deepreactive/microtask"
	"github.com/delaneyj/deepreactive/reactive"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// should only see the initial and the final value of a burst of writes
func TestBurstOfWritesSeesFinalValue(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"count": 0})
	seen := []int{}
	mustEffect(t, rt, func() {
		v, _ := s.GetInt("count")
		seen = append(seen, v)
	})

	s.Set("count", 1)
	s.Set("count", 1)
	s.Set("count", 2)
	assert.Equal(t, []int{0}, seen, "writes must not run effects synchronously")

	rt.Drain()
	assert.Equal(t, []int{0, 2}, seen)
}

// should re-run a length reader once when the array grows
func TestLengthReaderRunsOnPush(t *testing.T) {
	rt := newRuntime(t)
	arr := rt.Array([]any{1, 2, 3})
	lenRuns := 0
	mustEffect(t, rt, func() {
		arr.Len()
		lenRuns++
	})

	arr.Push(4)
	rt.Drain()
	assert.Equal(t, 2, lenRuns)
}

// should keep independent observers independent
func TestIndependentObservers(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1, "b": 2})
	ea := mustEffect(t, rt, func() { s.Get("a") })
	eb := mustEffect(t, rt, func() { s.Get("b") })

	s.Set("a", 10)
	rt.Drain()
	assert.Equal(t, 2, ea.Runs())
	assert.Equal(t, 1, eb.Runs())
}

// should not re-run for unrelated keys and re-run exactly once for its own key
func TestGranularIsolation(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1, "b": 2})
	e := mustEffect(t, rt, func() { s.Get("a") })

	s.Set("b", 3)
	rt.Drain()
	assert.Equal(t, 1, e.Runs())

	s.Set("a", 5)
	rt.Drain()
	assert.Equal(t, 2, e.Runs())
	rt.Drain()
	assert.Equal(t, 2, e.Runs())
}

// should suppress writes that are structurally equal to the current value
func TestEqualWritesAreNoOps(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{
		"list":  []any{1, 2},
		"when":  time.UnixMilli(1000),
		"inner": map[string]any{"x": 1},
	})
	e := mustEffect(t, rt, func() {
		s.Get("list")
		s.Get("when")
		s.Get("inner")
	})

	s.Set("list", []any{1, 2})
	s.Set("when", time.UnixMilli(1000))
	s.Set("inner", map[string]any{"x": 1})
	s.Set("inner", s.Get("inner"))
	rt.Drain()
	assert.Equal(t, 1, e.Runs())

	s.Set("list", []any{1, 2, 3})
	rt.Drain()
	assert.Equal(t, 2, e.Runs())
}

// should notice a set whose members share nested pointers but hold other values
func TestSetWriteWithSharedPointersNotifies(t *testing.T) {
	type holder struct {
		P *int
	}
	one, two := 1, 2
	rt := newRuntime(t)
	s := rt.Object(map[string]any{
		"s": mapset.NewThreadUnsafeSet[any](&holder{P: &one}, &holder{P: &one}),
	})
	e := mustEffect(t, rt, func() { s.Get("s") })

	s.Set("s", mapset.NewThreadUnsafeSet[any](&holder{P: &two}, &holder{P: &two}))
	rt.Drain()
	assert.Equal(t, 2, e.Runs())
}

// should treat NaN as a change every time
func TestNaNAlwaysNotifies(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"v": 0.0})
	e := mustEffect(t, rt, func() { s.Get("v") })

	s.Set("v", math.NaN())
	rt.Drain()
	s.Set("v", math.NaN())
	rt.Drain()
	assert.Equal(t, 3, e.Runs())
}

// should run once for many synchronous writes to the same key
func TestBatchingIdempotence(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"n": 0})
	last := -1
	e := mustEffect(t, rt, func() {
		last, _ = s.GetInt("n")
	})

	rt.Batch(func() {
		for i := 1; i <= 50; i++ {
			s.Set("n", i)
		}
	})
	assert.Equal(t, 2, e.Runs())
	assert.Equal(t, 50, last)
}

// should never trigger a stopped effect
func TestStop(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1})
	e := mustEffect(t, rt, func() { s.Get("a") })
	assert.Equal(t, 1, rt.Stats().Subscribers)

	e.Stop()
	e.Stop()
	assert.False(t, e.Active())
	assert.Equal(t, 0, rt.Stats().Subscribers)

	s.Set("a", 2)
	rt.Drain()
	assert.Equal(t, 1, e.Runs())
	assert.NoError(t, e.Run())
	assert.Equal(t, 1, e.Runs())
}

// should filter out effects stopped between the write and the flush
func TestStopBeforeFlush(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1})
	e := mustEffect(t, rt, func() { s.Get("a") })

	s.Set("a", 2)
	e.Stop()
	rt.Drain()
	assert.Equal(t, 1, e.Runs())
}

// should drop dependencies of branches no longer taken
func TestStaleDependenciesAreDropped(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"flag": true, "a": 1, "b": 2})
	e := mustEffect(t, rt, func() {
		if flag, _ := s.GetBool("flag"); flag {
			s.Get("a")
		} else {
			s.Get("b")
		}
	})

	s.Set("flag", false)
	rt.Drain()
	assert.Equal(t, 2, e.Runs())

	s.Set("a", 100)
	rt.Drain()
	assert.Equal(t, 2, e.Runs())

	s.Set("b", 100)
	rt.Drain()
	assert.Equal(t, 3, e.Runs())
}

// should run outer effect first
func TestParentFlushesBeforeChild(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1})
	log := []string{}

	parent := mustEffect(t, rt, func() {
		mustEffect(t, rt, func() {
			s.Get("a")
			log = append(log, "child")
		})
		// read after the child registered, so the child is first in the bucket
		s.Get("a")
		log = append(log, "parent")
	})
	assert.Equal(t, 0, parent.Level())
	assert.Equal(t, []string{"child", "parent"}, log)

	log = log[:0]
	s.Set("a", 2)
	rt.Drain()
	assert.Equal(t, []string{"child", "parent"}, log, "old child is stopped by the parent re-run")
}

func TestChildLevelsAndOwnership(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1, "b": 1})
	var child, grandchild *reactive.Effect
	childRuns := 0

	parent := mustEffect(t, rt, func() {
		s.Get("a")
		child = mustEffect(t, rt, func() {
			s.Get("b")
			childRuns++
			grandchild = mustEffect(t, rt, func() {})
		})
	})
	assert.Equal(t, 1, child.Level())
	assert.Equal(t, 2, grandchild.Level())

	s.Set("b", 2)
	rt.Drain()
	assert.Equal(t, 2, childRuns)
	assert.Equal(t, 1, parent.Runs())

	first := child
	s.Set("a", 2)
	rt.Drain()
	assert.False(t, first.Active())
	assert.True(t, child.Active())
	assert.NotSame(t, first, child)

	parent.Stop()
	assert.False(t, child.Active())
	assert.False(t, grandchild.Active())
}

// should make an effect created by a parent that stopped itself a top level effect
func TestEffectCreatedAfterParentStopsIsTopLevel(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"v": 1})
	var orphan *reactive.Effect
	stop, err := rt.Scope(func() error {
		mustEffect(t, rt, func() {
			rt.Active().Stop()
			orphan = mustEffect(t, rt, func() { s.Get("v") })
		})
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, orphan)
	assert.Equal(t, 0, orphan.Level())

	s.Set("v", 2)
	rt.Drain()
	assert.Equal(t, 2, orphan.Runs())

	stop()
	assert.False(t, orphan.Active())
}

// should skip an effect that retriggers itself while running
func TestSelfReentrantEffectIsSkipped(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"n": 0})
	e := mustEffect(t, rt, func() {
		n, _ := s.GetInt("n")
		s.Set("n", n+1)
	})

	rt.Drain()
	assert.Equal(t, 1, e.Runs())
	n, _ := s.GetInt("n")
	assert.Equal(t, 1, n)
}

func TestShouldRun(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1})
	e := mustEffect(t, rt, func() { s.Get("a") })
	assert.False(t, e.ShouldRun())

	s.Set("a", 2)
	assert.True(t, e.ShouldRun())

	// a manual re-run records the new version, so the queued flush has nothing to do
	require.NoError(t, e.Run())
	assert.False(t, e.ShouldRun())
	rt.Drain()
	assert.Equal(t, 2, e.Runs())
	assert.Equal(t, uint64(1), rt.Stats().EffectsSkipped)
}

func TestFirstRunErrorIsReturned(t *testing.T) {
	rt := newRuntime(t)
	boom := errors.New("boom")
	e, err := rt.Effect(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, e)
	assert.True(t, e.Active())
	assert.ErrorIs(t, e.Run(), boom)
}

// should restore the current effect even when the function panics
func TestPanicRestoresActiveEffect(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1})
	shouldPanic := true

	assert.Panics(t, func() {
		rt.Effect(func() error {
			s.Get("a")
			if shouldPanic {
				panic("bad effect")
			}
			return nil
		})
	})
	shouldPanic = false
	assert.Nil(t, rt.Active())

	e := mustEffect(t, rt, func() { s.Get("a") })
	assert.Nil(t, rt.Active())
	s.Set("a", 2)
	rt.Drain()
	assert.Equal(t, 2, e.Runs())
}

// should keep running siblings when one effect fails during a flush
func TestFlushIsolatesEffectFailures(t *testing.T) {
	var failures []error
	var failed []*reactive.Effect
	rt := newRuntime(t, reactive.WithOnError(func(e *reactive.Effect, err error) {
		failed = append(failed, e)
		failures = append(failures, err)
	}))
	s := rt.Object(map[string]any{"a": 1})
	boom := errors.New("boom")

	erring, err := rt.Effect(func() error {
		if v, _ := s.GetInt("a"); v > 1 {
			return boom
		}
		return nil
	})
	require.NoError(t, err)
	panicking := mustEffect(t, rt, func() {
		if v, _ := s.GetInt("a"); v > 1 {
			panic("bad effect")
		}
	})
	healthy := mustEffect(t, rt, func() { s.Get("a") })

	s.Set("a", 2)
	rt.Drain()

	require.Len(t, failures, 2)
	assert.ErrorIs(t, failures[0], boom)
	assert.ErrorIs(t, failures[1], reactive.ErrEffectPanic)
	assert.Contains(t, failures[1].Error(), "bad effect")
	assert.Equal(t, []*reactive.Effect{erring, panicking}, failed)
	assert.Equal(t, 2, healthy.Runs())
	assert.Nil(t, rt.Active())
	assert.Equal(t, uint64(2), rt.Stats().EffectErrors)

	// the panicking effect kept its dependencies
	s.Set("a", 0)
	rt.Drain()
	assert.Equal(t, 3, panicking.Runs())
}

// should run at most the cap per microtask and defer the rest
func TestFlushCapDefersRemainder(t *testing.T) {
	sched := &manualScheduler{}
	cfg := reactive.DefaultConfig()
	cfg.MaxFlushSize = 2
	rt := newRuntime(t, reactive.WithConfig(cfg), reactive.WithScheduler(sched))

	s := rt.Object(map[string]any{"a": 1})
	effects := make([]*reactive.Effect, 5)
	for i := range effects {
		effects[i] = mustEffect(t, rt, func() { s.Get("a") })
	}
	s.Set("a", 2)
	require.Len(t, sched.tasks, 1)

	ran := func() int {
		n := 0
		for _, e := range effects {
			if e.Runs() == 2 {
				n++
			}
		}
		return n
	}

	require.True(t, sched.runOne())
	assert.Equal(t, 2, ran())
	assert.Equal(t, 3, rt.Stats().Pending)

	require.True(t, sched.runOne())
	assert.Equal(t, 4, ran())

	require.True(t, sched.runOne())
	assert.Equal(t, 5, ran())
	assert.False(t, sched.runOne())
	assert.Equal(t, 0, rt.Stats().Pending)
}

// should drop a cascade that never converges and report it
func TestRunawayCascadeIsDropped(t *testing.T) {
	var reported []error
	cfg := reactive.DefaultConfig()
	cfg.MaxFlushIterations = 10
	rt := newRuntime(t,
		reactive.WithConfig(cfg),
		reactive.WithOnError(func(e *reactive.Effect, err error) {
			assert.Nil(t, e)
			reported = append(reported, err)
		}),
	)

	s := rt.Object(map[string]any{"x": 0, "y": 0})
	a := mustEffect(t, rt, func() {
		x, _ := s.GetInt("x")
		s.Set("y", x+1)
	})
	b := mustEffect(t, rt, func() {
		y, _ := s.GetInt("y")
		s.Set("x", y+1)
	})

	rt.Drain()
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], reactive.ErrRunawayCascade)
	assert.Equal(t, 0, rt.Stats().Pending)
	assert.Equal(t, uint64(1), rt.Stats().CascadesDropped)
	assert.LessOrEqual(t, a.Runs()+b.Runs(), 2+cfg.MaxFlushIterations)

	// the runtime keeps working afterwards
	other := rt.Object(map[string]any{"z": 0})
	e := mustEffect(t, rt, func() { other.Get("z") })
	other.Set("z", 1)
	rt.Drain()
	assert.Equal(t, 2, e.Runs())
}

func TestScopeStopsItsEffects(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1})
	var inner []*reactive.Effect

	stop, err := rt.Scope(func() error {
		inner = append(inner, mustEffect(t, rt, func() { s.Get("a") }))
		inner = append(inner, mustEffect(t, rt, func() { s.Get("a") }))
		return nil
	})
	require.NoError(t, err)
	outside := mustEffect(t, rt, func() { s.Get("a") })

	stop()
	for _, e := range inner {
		assert.False(t, e.Active())
	}
	assert.True(t, outside.Active())
}

func TestUntracked(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1, "b": 1})
	e := mustEffect(t, rt, func() {
		s.Get("a")
		rt.Untracked(func() {
			s.Get("b")
		})
	})

	s.Set("b", 2)
	rt.Drain()
	assert.Equal(t, 1, e.Runs())

	s.Set("a", 2)
	rt.Drain()
	assert.Equal(t, 2, e.Runs())
}

func TestPauseAndResumeTracking(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1})
	e := mustEffect(t, rt, func() {
		rt.PauseTracking()
		s.Get("a")
		rt.ResumeTracking()
	})
	s.Set("a", 2)
	rt.Drain()
	assert.Equal(t, 1, e.Runs())
}

func TestFlushRunsSynchronously(t *testing.T) {
	rt := newRuntime(t)
	s := rt.Object(map[string]any{"a": 1})
	e := mustEffect(t, rt, func() { s.Get("a") })

	s.Set("a", 2)
	rt.Flush()
	assert.Equal(t, 2, e.Runs())
	rt.Drain()
	assert.Equal(t, 2, e.Runs())
}

// should flush after each task when driven by an event loop
func TestRuntimeOnLoop(t *testing.T) {
	loop := microtask.NewLoop(microtask.WithLogger(logr.Discard()))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go loop.Run(ctx)
	defer loop.Close()

	rt := newRuntime(t, reactive.WithScheduler(loop))
	var s *reactive.Object
	seen := []int{}
	require.NoError(t, loop.Submit(ctx, func() {
		s = rt.Object(map[string]any{"n": 0})
		mustEffect(t, rt, func() {
			n, _ := s.GetInt("n")
			seen = append(seen, n)
		})
	}))

	require.NoError(t, loop.Submit(ctx, func() {
		s.Set("n", 1)
		s.Set("n", 2)
		assert.Equal(t, []int{0}, seen)
	}))
	assert.Equal(t, 0, rt.Drain())

	var final []int
	require.NoError(t, loop.Submit(ctx, func() {
		final = append(final, seen...)
	}))
	assert.Equal(t, []int{0, 2}, final)
}

// should not count a deferred remainder as a runaway cascade
func TestFlushCapIsNotARunaway(t *testing.T) {
	cfg := reactive.DefaultConfig()
	cfg.MaxFlushSize = 1
	cfg.MaxFlushIterations = 2
	rt := newRuntime(t, reactive.WithConfig(cfg))

	s := rt.Object(map[string]any{"a": 1})
	effects := make([]*reactive.Effect, 5)
	for i := range effects {
		effects[i] = mustEffect(t, rt, func() { s.Get("a") })
	}
	s.Set("a", 2)
	rt.Drain()

	for _, e := range effects {
		assert.Equal(t, 2, e.Runs())
	}
	assert.Equal(t, uint64(0), rt.Stats().CascadesDropped)
}
