// Package http contains the gin HTTP handlers for the builder backend:
// widget resolution and cache control, builder state mutations,
// cross-canvas copy, layout persistence, and state export/import.
package http
