// Package main is the entry point for the Pagecraft builder backend.
//
// The server resolves widget bundles into renderable units, owns the
// versioned builder state for the desktop and mobile canvases, and
// streams state events to editing clients.
//
// The server provides:
//   - REST API for widget resolution and cache control
//   - REST API for builder state mutations, undo/redo, and copy
//   - Layout persistence and state export/import
//   - WebSocket streaming of state events
//   - Rate limiting and Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8600 -bundles ./widgets
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
