// Package format holds the low-level constants and arithmetic shared by the
// memory-management packages: page geometry, byte sizes, alignment helpers
// and the little-endian word codec used for in-memory block headers.
package format

const (
	// PageShift is equal to log2(PageSize). Shifting an address right by
	// PageShift yields its page (or frame) number and vice-versa.
	PageShift = 12

	// PageSize is the size of a virtual page and a physical frame in bytes.
	PageSize = uintptr(1 << PageShift)

	// PageMask masks the offset of an address within its page.
	PageMask = PageSize - 1

	// WordSize is the size of a machine word as stored in block headers.
	WordSize = 8
)
