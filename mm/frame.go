// Package mm contains the physical memory bookkeeping used while bootstrapping
// the kernel heap: frame and page numbers, the firmware memory map and the
// boot-time frame source.
package mm

import "github.com/joshuapare/kheap/internal/format"

// Frame describes a physical memory page index.
type Frame uintptr

const (
	// InvalidFrame is returned by frame sources when
	// they fail to reserve the requested frame.
	InvalidFrame = Frame(^uintptr(0) >> format.PageShift)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical memory address pointed to by this Frame.
func (f Frame) Address() uintptr {
	return uintptr(f) << format.PageShift
}

// FrameFromAddress returns a Frame that corresponds to the given physical
// address. Addresses that are not page-aligned are rounded down to the frame
// that contains them.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame(physAddr >> format.PageShift)
}

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual memory address pointed to by this Page.
func (p Page) Address() uintptr {
	return uintptr(p) << format.PageShift
}

// PageFromAddress returns a Page that corresponds to the given virtual
// address. Addresses that are not page-aligned are rounded down to the page
// that contains them.
func PageFromAddress(virtAddr uintptr) Page {
	return Page(virtAddr >> format.PageShift)
}

// PageRange returns the pages covering [start, start+size). A zero size yields
// an empty range.
func PageRange(start, size uintptr) (first, last Page, count uintptr) {
	if size == 0 {
		return 0, 0, 0
	}
	first = PageFromAddress(start)
	last = PageFromAddress(start + size - 1)
	return first, last, uintptr(last-first) + 1
}
