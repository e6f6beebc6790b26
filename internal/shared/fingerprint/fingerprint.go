// Package fingerprint derives cheap content-addressed cache keys.
//
// Fingerprints are FNV-64 digests, not cryptographic hashes: the cache
// only needs sensitivity to content changes and cheap recomputation.
package fingerprint

import (
	"hash/fnv"
	"strconv"
)

// Hasher computes content fingerprints
type Hasher struct{}

// New creates a fingerprint hasher
func New() *Hasher {
	return &Hasher{}
}

// Sum computes the fingerprint of a single byte slice
func (h *Hasher) Sum(data []byte) string {
	f := fnv.New64a()
	f.Write(data)
	return strconv.FormatUint(f.Sum64(), 16)
}

// SumString computes the fingerprint of a string
func (h *Hasher) SumString(s string) string {
	return h.Sum([]byte(s))
}

// SumFields computes a fingerprint over multiple fields. Fields are
// length-delimited so ("ab","c") and ("a","bc") never collide.
func (h *Hasher) SumFields(fields ...string) string {
	f := fnv.New64a()
	for _, field := range fields {
		f.Write([]byte(strconv.Itoa(len(field))))
		f.Write([]byte{':'})
		f.Write([]byte(field))
	}
	return strconv.FormatUint(f.Sum64(), 16)
}

// Key derives the cache key for a widget's script content
func Key(widgetName, scriptContent string) string {
	return New().SumFields(widgetName, scriptContent)
}
