package format

// Alignment utilities. All alignments must be powers of two; callers validate
// user-supplied alignments with IsPowerOfTwo before using the helpers below.

// AlignUp returns addr rounded up to the next multiple of align.
//
// Example:
//
//	AlignUp(1, 8)    = 8
//	AlignUp(8, 8)    = 8
//	AlignUp(9, 16)   = 16
//	AlignUp(4097, 4096) = 8192
func AlignUp(addr, align uintptr) uintptr {
	return (addr + align - 1) &^ (align - 1)
}

// AlignDown returns addr rounded down to the previous multiple of align.
func AlignDown(addr, align uintptr) uintptr {
	return addr &^ (align - 1)
}

// IsAligned reports whether addr is a multiple of align.
func IsAligned(addr, align uintptr) bool {
	return addr&(align-1) == 0
}

// IsPowerOfTwo reports whether v is a non-zero power of two.
func IsPowerOfTwo(v uintptr) bool {
	return v != 0 && v&(v-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= v. NextPowerOfTwo(0) is 1.
func NextPowerOfTwo(v uintptr) uintptr {
	p := uintptr(1)
	for p < v {
		p <<= 1
	}
	return p
}

// PageAlignUp rounds addr up to the next page boundary.
func PageAlignUp(addr uintptr) uintptr {
	return AlignUp(addr, PageSize)
}

// PageAlignDown rounds addr down to the containing page boundary.
func PageAlignDown(addr uintptr) uintptr {
	return AlignDown(addr, PageSize)
}
