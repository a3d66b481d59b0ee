//go:build kheap_bump

package kheap

// DefaultKind is the strategy selected at build time.
const DefaultKind = KindBump
