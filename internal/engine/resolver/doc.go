// Package resolver maps reference names to bundle artifacts.
//
// References are tagged variants: a finite builtin set (the injected
// rendering runtime) or bundle-local names matched against artifact
// file names with exact, extension-insensitive, and fuzzy rules.
package resolver
