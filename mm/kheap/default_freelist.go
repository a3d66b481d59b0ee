//go:build kheap_freelist && !kheap_bump

package kheap

// DefaultKind is the strategy selected at build time.
const DefaultKind = KindFreeList
