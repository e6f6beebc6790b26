// Package engine is the dynamic component resolution pipeline: bundle
// fetch, reference resolution, sandboxed evaluation, renderable-unit
// extraction, and content-addressed memoization. Every failure is local
// to the widget that caused it.
package engine
