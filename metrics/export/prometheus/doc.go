// Package prometheus renders linkAuth metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] wraps a [linkAuth.Engine]; its [http.Handler]
// serves every counter and the decrypt-latency histogram on each scrape,
// reading a fresh snapshot per request. Counter names follow the
// linkauth_*_total convention and the histogram is
// linkauth_decrypt_latency_seconds with cumulative le buckets.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
