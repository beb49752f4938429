package reactive

import (
	"context"

	"github.com/juju/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Stats is a snapshot of a runtime's counters.
type Stats struct {
	Flushes         uint64
	EffectRuns      uint64
	EffectsSkipped  uint64
	EffectErrors    uint64
	CascadesDropped uint64
	Pending         int
	Targets         int
	Wrappers        int
	Buckets         int
	Subscribers     int
}

type metrics struct {
	flushes metric.Int64Counter
	runs    metric.Int64Counter
	skipped metric.Int64Counter
	errors  metric.Int64Counter
	dropped metric.Int64Counter
	attrs   metric.MeasurementOption

	counts Stats
}

func newMetrics(meter metric.Meter, runtimeID string) (*metrics, error) {
	m := &metrics{
		attrs: metric.WithAttributes(attribute.String("runtime_id", runtimeID)),
	}

	var err error
	if m.flushes, err = meter.Int64Counter("reactive.flushes",
		metric.WithDescription("Number of scheduler flush batches"),
	); err != nil {
		return nil, errors.Trace(err)
	}
	if m.runs, err = meter.Int64Counter("reactive.effect.runs",
		metric.WithDescription("Number of effect executions"),
	); err != nil {
		return nil, errors.Trace(err)
	}
	if m.skipped, err = meter.Int64Counter("reactive.effect.skipped",
		metric.WithDescription("Scheduled effects skipped because they were stopped or up to date"),
	); err != nil {
		return nil, errors.Trace(err)
	}
	if m.errors, err = meter.Int64Counter("reactive.effect.errors",
		metric.WithDescription("Effect errors and panics during flushes"),
	); err != nil {
		return nil, errors.Trace(err)
	}
	if m.dropped, err = meter.Int64Counter("reactive.cascade.dropped",
		metric.WithDescription("Effects dropped by runaway cascade protection"),
	); err != nil {
		return nil, errors.Trace(err)
	}
	return m, nil
}

func (m *metrics) flush() {
	m.counts.Flushes++
	m.flushes.Add(context.Background(), 1, m.attrs)
}

func (m *metrics) run() {
	m.counts.EffectRuns++
	m.runs.Add(context.Background(), 1, m.attrs)
}

func (m *metrics) skip() {
	m.counts.EffectsSkipped++
	m.skipped.Add(context.Background(), 1, m.attrs)
}

func (m *metrics) fail() {
	m.counts.EffectErrors++
	m.errors.Add(context.Background(), 1, m.attrs)
}

func (m *metrics) drop(n int) {
	m.counts.CascadesDropped += uint64(n)
	m.dropped.Add(context.Background(), int64(n), m.attrs)
}
