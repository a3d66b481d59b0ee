package alloc

// Stats holds allocator counters. Fields that do not apply to a strategy stay
// zero.
type Stats struct {
	AllocCalls   uint64 // Total Alloc() calls
	FreeCalls    uint64 // Total Free() calls
	FailedAllocs uint64 // Alloc() calls that returned an error
	BytesInUse   uint64 // Bytes handed out and not yet freed, after rounding

	Splits           uint64 // Blocks whose tail was split off and reinserted
	CoalesceForward  uint64 // Merges with the following free block
	CoalesceBackward uint64 // Merges with the preceding free block
	WastedBytes      uint64 // Tails too small to track, lost for good

	ClassHits      uint64 // Size-class allocations served from a class list
	ClassRefills   uint64 // Size-class blocks carved from the fallback
	FallbackAllocs uint64 // Requests above the largest class

	BumpResets uint64 // Times the bump cursor returned to the start
}
