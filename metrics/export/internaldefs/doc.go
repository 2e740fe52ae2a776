// Package internaldefs holds the metric name, help text, and histogram
// bucket definitions shared by every exporter implementation.
//
// The Prometheus and OTel exporters both iterate [CounterDefs] and
// [HistogramDefs], so an instrument added or renamed here shows up in all
// exposition formats at once, under the same name. Bucket boundaries for
// the decrypt latency histogram are fixed here as well; exporters only
// normalize and accumulate them.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
