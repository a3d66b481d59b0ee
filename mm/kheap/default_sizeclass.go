//go:build !kheap_bump && !kheap_freelist

package kheap

// DefaultKind is the strategy selected at build time.
const DefaultKind = KindSizeClass
