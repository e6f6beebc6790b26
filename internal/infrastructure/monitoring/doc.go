// Package monitoring exposes Prometheus metrics for the builder backend:
// HTTP traffic, widget resolution and cache behavior, sandboxed
// evaluation timing, store mutations, and copy operations.
package monitoring
