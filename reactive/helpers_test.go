package reactive_test

import (
	"testing"

	"github.com/delaneyj/deepreactive/reactive"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T, opts ...reactive.Option) *reactive.Runtime {
	t.Helper()
	base := []reactive.Option{
		reactive.WithLogger(logr.Discard()),
		reactive.WithOnError(func(e *reactive.Effect, err error) {
			assert.FailNow(t, err.Error())
		}),
	}
	rt, err := reactive.New(append(base, opts...)...)
	require.NoError(t, err)
	return rt
}

func mustEffect(t *testing.T, rt *reactive.Runtime, fn func()) *reactive.Effect {
	t.Helper()
	e, err := rt.Effect(func() error {
		fn()
		return nil
	})
	require.NoError(t, err)
	return e
}

// manualScheduler hands microtasks to the test one at a time.
type manualScheduler struct {
	tasks []func()
}

func (s *manualScheduler) QueueMicrotask(fn func()) {
	s.tasks = append(s.tasks, fn)
}

func (s *manualScheduler) runOne() bool {
	if len(s.tasks) == 0 {
		return false
	}
	fn := s.tasks[0]
	s.tasks = s.tasks[1:]
	fn()
	return true
}
