// Package metrics exposes Prometheus counters and histograms for analyses,
// page and resource fetches, and assistant calls.
//
// A nil *Registry is valid and records nothing, so components can take one
// unconditionally.
package metrics
