package otel

import (
	"context"
	"sync"
	"testing"

	linkAuth "github.com/MrEthical07/linkAuth"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	counters   map[linkAuth.MetricID]uint64
	histograms map[linkAuth.MetricID][]uint64
	dropped    uint64
}

func (f *fakeSource) MetricsSnapshot() linkAuth.MetricsSnapshot {
	out := linkAuth.MetricsSnapshot{
		Counters:   make(map[linkAuth.MetricID]uint64, len(f.counters)),
		Histograms: make(map[linkAuth.MetricID][]uint64, len(f.histograms)),
	}
	for id, v := range f.counters {
		out.Counters[id] = v
	}
	for id, buckets := range f.histograms {
		out.Histograms[id] = append([]uint64(nil), buckets...)
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 { return f.dropped }

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

// findInt64 walks collected metrics and returns the first data point value
// for the named instrument, whether it was exported as a sum or a gauge.
func findInt64(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if len(data.DataPoints) > 0 {
					return data.DataPoints[0].Value, true
				}
			case metricdata.Gauge[int64]:
				if len(data.DataPoints) > 0 {
					return data.DataPoints[0].Value, true
				}
			}
		}
	}
	return 0, false
}

func TestExporterObservesCounterValues(t *testing.T) {
	reader, provider := newManualMeter(t)
	src := &fakeSource{
		counters: map[linkAuth.MetricID]uint64{linkAuth.MetricSignInSuccess: 3},
		dropped:  1,
	}

	exp, err := NewOTelExporterFromSource(provider.Meter("linkauth-test"), src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if got, ok := findInt64(rm, "linkauth_signin_success_total"); !ok || got != 3 {
		t.Fatalf("signin success counter = %d, present=%v; want 3", got, ok)
	}
	if got, ok := findInt64(rm, "linkauth_audit_dropped_total"); !ok || got != 1 {
		t.Fatalf("audit dropped counter = %d, present=%v; want 1", got, ok)
	}
}

func TestExporterHistogramBucketsCumulative(t *testing.T) {
	reader, provider := newManualMeter(t)
	src := &fakeSource{
		histograms: map[linkAuth.MetricID][]uint64{
			linkAuth.MetricDecryptLatency: {1, 1, 1, 1, 1, 1, 1, 1},
		},
	}

	exp, err := NewOTelExporterFromSource(provider.Meter("linkauth-test"), src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if got, ok := findInt64(rm, "linkauth_decrypt_latency_seconds_count"); !ok || got != 8 {
		t.Fatalf("histogram count = %d, present=%v; want 8", got, ok)
	}
	// +Inf bucket carries the full cumulative total.
	if got, ok := findInt64(rm, "linkauth_decrypt_latency_seconds_bucket_le_inf"); !ok || got != 8 {
		t.Fatalf("+Inf bucket = %d, present=%v; want 8", got, ok)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newManualMeter(t)

	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err == nil {
		t.Fatal("expected error for nil meter")
	}
	if _, err := NewOTelExporterFromSource(provider.Meter("linkauth-test"), nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newManualMeter(t)
	src := &fakeSource{
		counters: map[linkAuth.MetricID]uint64{linkAuth.MetricSignInSuccess: 1},
		histograms: map[linkAuth.MetricID][]uint64{
			linkAuth.MetricDecryptLatency: {1, 0, 0, 0, 0, 0, 0, 0},
		},
	}

	exp, err := NewOTelExporterFromSource(provider.Meter("linkauth-test"), src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}()
	}
	wg.Wait()

	if err := exp.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}
