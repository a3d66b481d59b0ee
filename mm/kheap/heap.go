// Package kheap is the kernel heap: one allocation strategy over a mapped
// virtual range, serialised behind a spinlock.
//
// A Heap is constructed explicitly and initialised exactly once, after the
// heap range has been mapped (see Boot). Every Alloc and Free takes the heap
// lock for the duration of the strategy call only. Allocating while the lock
// is held by the same execution context, such as from an interrupt handler
// that preempted an allocation, deadlocks.
package kheap

import (
	"fmt"
	"sync/atomic"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/logger"
	"github.com/joshuapare/kheap/internal/spinlock"
	"github.com/joshuapare/kheap/mm/alloc"
)

// Memory is the access the heap needs to its mapped range: word access for
// block headers plus bulk operations for AllocZeroed and Realloc.
// *paging.OffsetPageTable implements it.
type Memory interface {
	alloc.Memory
	Copy(dst, src, n uintptr)
	Fill(addr, n uintptr, b byte)
}

// Heap is the global kernel heap.
type Heap struct {
	lock  spinlock.Spinlock
	state atomic.Uint32

	kind    Kind
	classes alloc.SizeClassConfig
	mem     Memory
	start   uintptr
	size    uintptr

	// Exactly one of these is in use, selected by kind.
	bump      alloc.BumpAllocator
	freeList  alloc.FreeListAllocator
	sizeClass alloc.SizeClassAllocator
}

// New returns an uninitialised heap using kind and the default size classes.
func New(kind Kind) *Heap {
	return &Heap{kind: kind, classes: alloc.DefaultSizeClassConfig}
}

// NewFromConfig returns an uninitialised heap for cfg's kind and size
// classes. The range in cfg is applied by Init.
func NewFromConfig(cfg Config) *Heap {
	return &Heap{kind: cfg.Kind, classes: cfg.SizeClasses}
}

// Init hands the mapped range [start, start+size) to the strategy. It may only
// succeed once; later calls return ErrAlreadyInitialized. A failed Init leaves
// the heap uninitialised.
func (h *Heap) Init(mem Memory, start, size uintptr) error {
	if !h.state.CompareAndSwap(uint32(StateUninitialized), uint32(StateInitializing)) {
		return ErrAlreadyInitialized
	}

	if err := h.init(mem, start, size); err != nil {
		h.state.Store(uint32(StateUninitialized))
		return err
	}

	h.state.Store(uint32(StateReady))
	logger.Info("heap initialized",
		"kind", h.kind.String(),
		"start", fmt.Sprintf("%#x", start),
		"size", format.Size(size).String(),
	)
	return nil
}

func (h *Heap) init(mem Memory, start, size uintptr) error {
	if size == 0 || start == 0 || start+size < start ||
		!format.IsAligned(start, format.PageSize) || !format.IsAligned(size, format.PageSize) {
		return fmt.Errorf("%w: [%#x, +%#x)", ErrBadHeapRange, start, size)
	}

	h.lock.Acquire()
	defer h.lock.Release()

	var err error
	switch h.kind {
	case KindBump:
		err = h.bump.Init(start, size)
	case KindFreeList:
		err = h.freeList.Init(mem, start, size)
	case KindSizeClass:
		err = h.sizeClass.Init(mem, start, size, h.classes)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownKind, h.kind)
	}
	if err != nil {
		return fmt.Errorf("init %s heap: %w", h.kind, err)
	}

	h.mem, h.start, h.size = mem, start, size
	return nil
}

// mustBeReady panics with ErrNotInitialized unless Init has completed.
func (h *Heap) mustBeReady() {
	if State(h.state.Load()) != StateReady {
		panic(ErrNotInitialized)
	}
}

// Alloc returns the address of size bytes aligned to align, or an error
// wrapping alloc.ErrOutOfMemory when no space is left.
func (h *Heap) Alloc(size, align uintptr) (uintptr, error) {
	h.mustBeReady()

	h.lock.Acquire()
	var (
		addr uintptr
		err  error
	)
	switch h.kind {
	case KindBump:
		addr, err = h.bump.Alloc(size, align)
	case KindFreeList:
		addr, err = h.freeList.Alloc(size, align)
	case KindSizeClass:
		addr, err = h.sizeClass.Alloc(size, align)
	}
	h.lock.Release()

	if err != nil {
		logger.Debug("heap allocation failed", "size", size, "align", align, "error", err)
		return 0, err
	}
	return addr, nil
}

// Free releases an allocation. addr, size and align must be exactly those of
// a live allocation returned by Alloc; anything else corrupts the heap.
func (h *Heap) Free(addr, size, align uintptr) {
	h.mustBeReady()

	h.lock.Acquire()
	defer h.lock.Release()

	switch h.kind {
	case KindBump:
		h.bump.Free(addr, size, align)
	case KindFreeList:
		h.freeList.Free(addr, size, align)
	case KindSizeClass:
		h.sizeClass.Free(addr, size, align)
	}
}

// AllocZeroed is Alloc followed by clearing the returned bytes.
func (h *Heap) AllocZeroed(size, align uintptr) (uintptr, error) {
	addr, err := h.Alloc(size, align)
	if err != nil {
		return 0, err
	}
	h.mem.Fill(addr, size, 0)
	return addr, nil
}

// Realloc moves an allocation to a block of newSize bytes with the same
// alignment, copying min(oldSize, newSize) bytes. On failure the original
// allocation is left untouched. A zero addr behaves like Alloc.
func (h *Heap) Realloc(addr, oldSize, align, newSize uintptr) (uintptr, error) {
	if addr == 0 {
		return h.Alloc(newSize, align)
	}

	newAddr, err := h.Alloc(newSize, align)
	if err != nil {
		return 0, err
	}
	h.mem.Copy(newAddr, addr, min(oldSize, newSize))
	h.Free(addr, oldSize, align)
	return newAddr, nil
}

// State returns the heap's lifecycle state.
func (h *Heap) State() State {
	return State(h.state.Load())
}

// Kind returns the strategy the heap was built with.
func (h *Heap) Kind() Kind {
	return h.kind
}

// Bounds returns the heap range recorded by Init.
func (h *Heap) Bounds() alloc.Block {
	h.mustBeReady()
	return alloc.Block{Addr: h.start, Size: h.size}
}

// Memory returns the memory the heap was initialised with.
func (h *Heap) Memory() Memory {
	h.mustBeReady()
	return h.mem
}
