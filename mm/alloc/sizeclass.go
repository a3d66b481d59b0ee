package alloc

import "fmt"

// SizeClassAllocator serves small requests from per-class lists of
// fixed-size blocks and everything else from a wrapped FreeListAllocator.
//
// Allocation and free on a class are O(1): a free block's first word links
// it to the next block of the same class. Class blocks are never coalesced or
// returned to the fallback. An empty class is refilled with one block carved
// from the fallback at the class's own alignment, so every class block is
// aligned to its size.
type SizeClassAllocator struct {
	table    *sizeClassTable
	heads    []uintptr // per-class list heads, 0 when empty
	mem      Memory
	fallback FreeListAllocator

	stats Stats
}

// Init sets up an empty class list per class and hands the whole range to the
// fallback allocator.
func (s *SizeClassAllocator) Init(mem Memory, start, size uintptr, config SizeClassConfig) error {
	table, err := newSizeClassTable(config)
	if err != nil {
		return err
	}
	*s = SizeClassAllocator{
		table: table,
		heads: make([]uintptr, table.NumClasses()),
		mem:   mem,
	}
	if err := s.fallback.Init(mem, start, size); err != nil {
		return err
	}
	return nil
}

// classFor returns the class serving a request, or -1 for the fallback.
func (s *SizeClassAllocator) classFor(size, align uintptr) int {
	idx := s.table.getSizeClass(max(size, align))
	if idx == s.table.NumClasses() {
		return -1
	}
	return idx
}

// Alloc serves the request from the smallest class >= max(size, align), or
// from the fallback when no class is large enough.
func (s *SizeClassAllocator) Alloc(size, align uintptr) (uintptr, error) {
	s.stats.AllocCalls++
	if err := checkLayout(size, align); err != nil {
		s.stats.FailedAllocs++
		return 0, err
	}

	idx := s.classFor(size, align)
	if idx < 0 {
		addr, err := s.fallback.Alloc(size, align)
		if err != nil {
			s.stats.FailedAllocs++
			return 0, err
		}
		s.stats.FallbackAllocs++
		s.stats.BytesInUse += uint64(size)
		return addr, nil
	}

	class := s.table.classSize(idx)
	if head := s.heads[idx]; head != 0 {
		s.heads[idx] = uintptr(s.mem.ReadWord(head))
		s.stats.ClassHits++
		s.stats.BytesInUse += uint64(class)
		return head, nil
	}

	addr, err := s.fallback.Alloc(class, class)
	if err != nil {
		s.stats.FailedAllocs++
		return 0, err
	}
	s.stats.ClassRefills++
	s.stats.BytesInUse += uint64(class)
	return addr, nil
}

// Free pushes a class block back on its list, or forwards a fallback block.
// size and align must match the values passed to Alloc.
func (s *SizeClassAllocator) Free(addr, size, align uintptr) {
	s.stats.FreeCalls++
	if err := checkLayout(size, align); err != nil {
		panic(err)
	}

	idx := s.classFor(size, align)
	if idx < 0 {
		s.stats.BytesInUse -= min(uint64(size), s.stats.BytesInUse)
		s.fallback.Free(addr, size, align)
		return
	}

	s.mem.WriteWord(addr, uint64(s.heads[idx]))
	s.heads[idx] = addr
	s.stats.BytesInUse -= min(uint64(s.table.classSize(idx)), s.stats.BytesInUse)
}

// ClassStat describes one size class.
type ClassStat struct {
	Size uintptr // Block size of the class
	Free int     // Blocks currently on the class list
}

// String implements fmt.Stringer.
func (c ClassStat) String() string {
	return fmt.Sprintf("%d:%d", c.Size, c.Free)
}

// ClassStats walks every class list and reports its length.
func (s *SizeClassAllocator) ClassStats() []ClassStat {
	out := make([]ClassStat, len(s.heads))
	for i, head := range s.heads {
		out[i].Size = s.table.classSize(i)
		for cur := head; cur != 0; cur = uintptr(s.mem.ReadWord(cur)) {
			out[i].Free++
		}
	}
	return out
}

// Classes returns the class sizes in ascending order.
func (s *SizeClassAllocator) Classes() []uintptr {
	return append([]uintptr(nil), s.table.sizes...)
}

// Config returns the configuration the allocator was built with.
func (s *SizeClassAllocator) Config() SizeClassConfig { return s.table.config }

// Fallback exposes the wrapped free-list allocator for inspection.
func (s *SizeClassAllocator) Fallback() *FreeListAllocator { return &s.fallback }

// Stats returns the class counters merged with the fallback's split and
// coalesce counters.
func (s *SizeClassAllocator) Stats() Stats {
	st := s.stats
	fb := s.fallback.Stats()
	st.Splits = fb.Splits
	st.CoalesceForward = fb.CoalesceForward
	st.CoalesceBackward = fb.CoalesceBackward
	st.WastedBytes = fb.WastedBytes
	return st
}
