package otel

import (
	"context"
	"errors"
	"fmt"

	linkAuth "github.com/MrEthical07/linkAuth"
	"github.com/MrEthical07/linkAuth/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() linkAuth.MetricsSnapshot
	AuditDropped() uint64
}

// observeFunc reports one instrument's value from a snapshot.
type observeFunc func(metric.Observer, linkAuth.MetricsSnapshot)

type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
}

func NewOTelExporter(meter metric.Meter, engine *linkAuth.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	var (
		observables []metric.Observable
		observers   []observeFunc
	)
	bind := func(o metric.Observable, f observeFunc) {
		observables = append(observables, o)
		observers = append(observers, f)
	}

	for _, def := range internaldefs.CounterDefs {
		id := def.ID
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		bind(ins, func(o metric.Observer, s linkAuth.MetricsSnapshot) {
			o.ObserveInt64(ins, int64(s.Counters[id]))
		})
	}

	for _, def := range internaldefs.HistogramDefs {
		id := def.ID
		for i, suffix := range internaldefs.HistogramBoundSuffix {
			bucket := i
			name := def.Name + "_bucket_le_" + suffix
			ins, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
			if err != nil {
				return nil, fmt.Errorf("create histogram bucket gauge %s: %w", name, err)
			}
			bind(ins, func(o metric.Observer, s linkAuth.MetricsSnapshot) {
				cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(s.Histograms[id]))
				o.ObserveInt64(ins, int64(cumulative[bucket]))
			})
		}
		countName := def.Name + "_count"
		countIns, err := meter.Int64ObservableGauge(countName, metric.WithDescription("Histogram total sample count."))
		if err != nil {
			return nil, fmt.Errorf("create histogram count gauge %s: %w", countName, err)
		}
		bind(countIns, func(o metric.Observer, s linkAuth.MetricsSnapshot) {
			cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(s.Histograms[id]))
			o.ObserveInt64(countIns, int64(cumulative[len(cumulative)-1]))
		})
	}

	dropped, err := meter.Int64ObservableCounter(
		"linkauth_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	bind(dropped, func(o metric.Observer, _ linkAuth.MetricsSnapshot) {
		o.ObserveInt64(dropped, int64(source.AuditDropped()))
	})

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := source.MetricsSnapshot()
		for _, observe := range observers {
			observe(observer, snapshot)
		}
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	return &OTelExporter{source: source, registration: registration}, nil
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
