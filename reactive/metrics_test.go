package reactive_test

import (
	"context"
	"testing"

	"github.com/delaneyj/deepreactive/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	var failures int
	rt := newRuntime(t,
		reactive.WithMeter(provider.Meter("test")),
		reactive.WithOnError(func(e *reactive.Effect, err error) {
			failures++
		}),
	)
	s := rt.Object(map[string]any{"a": 1})
	mustEffect(t, rt, func() { s.Get("a") })
	stopped := mustEffect(t, rt, func() { s.Get("a") })
	mustEffect(t, rt, func() {
		if v, _ := s.GetInt("a"); v > 1 {
			panic("too big")
		}
	})

	s.Set("a", 2)
	stopped.Stop()
	rt.Drain()

	assert.Equal(t, int64(5), counterValue(t, reader, "reactive.effect.runs"))
	assert.Equal(t, int64(1), counterValue(t, reader, "reactive.flushes"))
	assert.Equal(t, int64(1), counterValue(t, reader, "reactive.effect.skipped"))
	assert.Equal(t, int64(1), counterValue(t, reader, "reactive.effect.errors"))
	assert.Equal(t, 1, failures)

	st := rt.Stats()
	assert.Equal(t, uint64(5), st.EffectRuns)
	assert.Equal(t, uint64(1), st.Flushes)
	assert.Equal(t, uint64(1), st.EffectsSkipped)
	assert.Equal(t, uint64(1), st.EffectErrors)
	assert.Equal(t, 1, st.Targets)
	assert.Equal(t, 1, st.Wrappers)
	assert.Equal(t, 1, st.Buckets)
	assert.Equal(t, 2, st.Subscribers)
}
