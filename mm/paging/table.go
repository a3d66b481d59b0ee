package paging

import (
	"fmt"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/mm"
)

// PhysMemory translates physical addresses into accessible memory.
// *physmem.Memory implements it.
type PhysMemory interface {
	Slice(phys uintptr, n int) []byte
	Size() uintptr
}

type pageTableEntry struct {
	frame mm.Frame
	flags Flags
}

// OffsetPageTable is a software page table for a single address space. Frames
// are reached through a fixed physical-to-virtual offset, which PhysMemory
// implements.
//
// Map and Unmap must not be called concurrently with each other or with any
// access method. Once the boot sequence has installed its mappings, the access
// methods may be used from multiple goroutines; callers synchronise accesses to
// overlapping bytes themselves.
type OffsetPageTable struct {
	phys    PhysMemory
	entries map[mm.Page]pageTableEntry
}

// NewOffsetPageTable creates an empty page table backed by phys.
func NewOffsetPageTable(phys PhysMemory) *OffsetPageTable {
	return &OffsetPageTable{
		phys:    phys,
		entries: make(map[mm.Page]pageTableEntry),
	}
}

// Map establishes a mapping between a virtual page and a physical frame.
// FlagPresent is always set on the installed entry.
func (t *OffsetPageTable) Map(page mm.Page, frame mm.Frame, flags Flags) error {
	if existing, ok := t.entries[page]; ok {
		return fmt.Errorf("%w: page %#x -> frame %#x", ErrMappingConflict, page.Address(), existing.frame.Address())
	}
	if !frame.Valid() || frame.Address()+format.PageSize > t.phys.Size() {
		return fmt.Errorf("%w: frame %#x", ErrFrameOutOfRange, frame.Address())
	}
	t.entries[page] = pageTableEntry{frame: frame, flags: flags | FlagPresent}
	return nil
}

// Unmap removes a mapping previously installed via Map.
func (t *OffsetPageTable) Unmap(page mm.Page) error {
	if _, ok := t.entries[page]; !ok {
		return fmt.Errorf("%w: page %#x", ErrNotMapped, page.Address())
	}
	delete(t.entries, page)
	return nil
}

// Lookup returns the frame and flags a page is mapped to.
func (t *OffsetPageTable) Lookup(page mm.Page) (mm.Frame, Flags, bool) {
	e, ok := t.entries[page]
	if !ok {
		return mm.InvalidFrame, 0, false
	}
	return e.frame, e.flags, true
}

// Translate returns the physical address for a virtual address.
func (t *OffsetPageTable) Translate(virt uintptr) (uintptr, bool) {
	e, ok := t.entries[mm.PageFromAddress(virt)]
	if !ok {
		return 0, false
	}
	return e.frame.Address() + virt&format.PageMask, true
}

// Mapped returns the number of installed mappings.
func (t *OffsetPageTable) Mapped() int {
	return len(t.entries)
}

// pageSlice returns the host bytes backing [virt, virt+n) where the range does
// not cross a page boundary.
func (t *OffsetPageTable) pageSlice(virt uintptr, n int, write bool) []byte {
	e, ok := t.entries[mm.PageFromAddress(virt)]
	if !ok {
		panic(&PageFault{Addr: virt, Write: write})
	}
	if write && !e.flags.HasFlags(FlagWritable) {
		panic(&PageFault{Addr: virt, Write: write, Present: true})
	}
	return t.phys.Slice(e.frame.Address()+virt&format.PageMask, n)
}

// visit calls fn with the host bytes backing [virt, virt+n), split at page
// boundaries.
func (t *OffsetPageTable) visit(virt, n uintptr, write bool, fn func(chunk []byte, done uintptr)) {
	for done := uintptr(0); done < n; {
		addr := virt + done
		chunk := min(format.PageSize-addr&format.PageMask, n-done)
		fn(t.pageSlice(addr, int(chunk), write), done)
		done += chunk
	}
}

// ReadWord returns the little-endian word stored at virtual address addr.
func (t *OffsetPageTable) ReadWord(addr uintptr) uint64 {
	if addr&format.PageMask <= format.PageSize-format.WordSize {
		return format.ReadWord(t.pageSlice(addr, format.WordSize, false), 0)
	}
	var buf [format.WordSize]byte
	t.ReadAt(buf[:], addr)
	return format.ReadWord(buf[:], 0)
}

// WriteWord stores v as a little-endian word at virtual address addr.
func (t *OffsetPageTable) WriteWord(addr uintptr, v uint64) {
	if addr&format.PageMask <= format.PageSize-format.WordSize {
		format.PutWord(t.pageSlice(addr, format.WordSize, true), 0, v)
		return
	}
	var buf [format.WordSize]byte
	format.PutWord(buf[:], 0, v)
	t.WriteAt(buf[:], addr)
}

// ReadAt copies len(p) bytes starting at virtual address addr into p.
func (t *OffsetPageTable) ReadAt(p []byte, addr uintptr) {
	t.visit(addr, uintptr(len(p)), false, func(chunk []byte, done uintptr) {
		copy(p[done:], chunk)
	})
}

// WriteAt copies p to virtual address addr.
func (t *OffsetPageTable) WriteAt(p []byte, addr uintptr) {
	t.visit(addr, uintptr(len(p)), true, func(chunk []byte, done uintptr) {
		copy(chunk, p[done:])
	})
}

// Copy copies n bytes from virtual address src to dst. The ranges must not
// overlap.
func (t *OffsetPageTable) Copy(dst, src, n uintptr) {
	var buf [256]byte
	for done := uintptr(0); done < n; {
		chunk := min(uintptr(len(buf)), n-done)
		t.ReadAt(buf[:chunk], src+done)
		t.WriteAt(buf[:chunk], dst+done)
		done += chunk
	}
}

// Fill sets n bytes starting at virtual address addr to b.
func (t *OffsetPageTable) Fill(addr, n uintptr, b byte) {
	t.visit(addr, n, true, func(chunk []byte, _ uintptr) {
		for i := range chunk {
			chunk[i] = b
		}
	})
}
