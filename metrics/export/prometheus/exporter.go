package prometheus

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	linkAuth "github.com/MrEthical07/linkAuth"
	"github.com/MrEthical07/linkAuth/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() linkAuth.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders linkAuth metrics in Prometheus text exposition format.
//
//	Docs: docs/metrics.md
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates a Prometheus exporter that reads from the given [linkAuth.Engine].
//
//	Docs: docs/metrics.md
func NewPrometheusExporter(engine *linkAuth.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from a
// custom metrics source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = p.WriteTo(w)
	})
}

// Render returns the current metrics in Prometheus text exposition format.
// An empty string means the exporter has no source or nothing was recorded.
func (p *PrometheusExporter) Render() string {
	var buf bytes.Buffer
	_, _ = p.WriteTo(&buf)
	return buf.String()
}

// WriteTo streams the current metrics to w. Counters come first in
// definition order, then histograms with cumulative buckets, then the audit
// drop counter sourced from the dispatcher rather than the snapshot.
func (p *PrometheusExporter) WriteTo(w io.Writer) (int64, error) {
	if p == nil || p.source == nil {
		return 0, nil
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return 0, nil
	}

	var total int64
	emit := func(n int, err error) error {
		total += int64(n)
		return err
	}

	for _, def := range internaldefs.CounterDefs {
		if err := emit(writeCounter(w, def.Name, def.Help, snapshot.Counters[def.ID])); err != nil {
			return total, err
		}
	}

	for _, def := range internaldefs.HistogramDefs {
		buckets := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID]))
		if err := emit(writeHistogram(w, def.Name, def.Help, buckets)); err != nil {
			return total, err
		}
	}

	err := emit(writeCounter(w, "linkauth_audit_dropped_total",
		"Dropped audit events due to dispatcher backpressure.", dropped))
	return total, err
}

func writeCounter(w io.Writer, name, help string, value uint64) (int, error) {
	return fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n",
		name, escapeHelp(help), name, name, value)
}

func writeHistogram(w io.Writer, name, help string, cumulative [8]uint64) (int, error) {
	n, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", name, escapeHelp(help), name)
	if err != nil {
		return n, err
	}

	for i, le := range internaldefs.HistogramBounds {
		m, err := fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", name, le, cumulative[i])
		n += m
		if err != nil {
			return n, err
		}
	}

	// Sum is not available in core snapshots; keep a stable field for compatibility.
	m, err := fmt.Fprintf(w, "%s_count %d\n%s_sum 0\n", name, cumulative[len(cumulative)-1], name)
	return n + m, err
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
