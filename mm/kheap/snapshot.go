package kheap

import (
	"log/slog"

	"github.com/joshuapare/kheap/mm/alloc"
)

// Snapshot is a point-in-time view of the heap taken under its lock.
type Snapshot struct {
	Kind  Kind
	Start uintptr
	Size  uintptr
	Stats alloc.Stats

	// FreeBlocks lists the free list (the fallback list for KindSizeClass).
	// Empty for KindBump.
	FreeBlocks []alloc.Block
	FreeBytes  uintptr

	// Classes reports per-class free block counts for KindSizeClass.
	Classes []alloc.ClassStat

	// BumpNext and LiveAllocations are set for KindBump.
	BumpNext        uintptr
	LiveAllocations uint64
}

// Stats returns the strategy counters.
func (h *Heap) Stats() alloc.Stats {
	h.mustBeReady()

	h.lock.Acquire()
	defer h.lock.Release()
	return h.statsLocked()
}

func (h *Heap) statsLocked() alloc.Stats {
	switch h.kind {
	case KindBump:
		return h.bump.Stats()
	case KindFreeList:
		return h.freeList.Stats()
	case KindSizeClass:
		return h.sizeClass.Stats()
	}
	return alloc.Stats{}
}

// Snapshot walks the strategy's bookkeeping. The walk is O(free blocks).
func (h *Heap) Snapshot() Snapshot {
	h.mustBeReady()

	h.lock.Acquire()
	defer h.lock.Release()

	s := Snapshot{Kind: h.kind, Start: h.start, Size: h.size, Stats: h.statsLocked()}
	switch h.kind {
	case KindBump:
		s.BumpNext = h.bump.Next()
		s.LiveAllocations = h.bump.Allocations()
		s.FreeBytes = h.bump.FreeBytes()
	case KindFreeList:
		s.FreeBlocks = h.freeList.FreeBlocks()
		s.FreeBytes = h.freeList.FreeBytes()
	case KindSizeClass:
		fb := h.sizeClass.Fallback()
		s.FreeBlocks = fb.FreeBlocks()
		s.FreeBytes = fb.FreeBytes()
		s.Classes = h.sizeClass.ClassStats()
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", s.Kind.String()),
		slog.Uint64("in_use", s.Stats.BytesInUse),
		slog.Uint64("free_bytes", uint64(s.FreeBytes)),
		slog.Int("free_blocks", len(s.FreeBlocks)),
		slog.Uint64("allocs", s.Stats.AllocCalls),
		slog.Uint64("frees", s.Stats.FreeCalls),
		slog.Uint64("failed", s.Stats.FailedAllocs),
	)
}
