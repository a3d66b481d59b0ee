package mm

// FrameSource is the boot-time frame allocator. It walks the usable regions of
// the firmware memory map and hands out each whole frame at most once.
//
// Allocations are tracked by a monotonic cursor that counts the frames handed
// out so far; every call re-derives the frame at that position from the
// filtered region list. Frames can never be returned to a FrameSource, which
// is what makes the cursor sufficient to rule out duplicates.
//
// A FrameSource is not safe for concurrent use; it is only driven by the
// single-threaded boot sequence.
type FrameSource struct {
	usable []MemoryRegion
	next   uint64
}

// NewFrameSource creates a frame source over the usable regions of m.
func NewFrameSource(m MemoryMap) *FrameSource {
	return &FrameSource{usable: m.Usable()}
}

// Next reserves the next available frame. It returns false once every usable
// frame has been handed out.
func (s *FrameSource) Next() (Frame, bool) {
	frame, ok := s.nth(s.next)
	if !ok {
		return InvalidFrame, false
	}
	s.next++
	return frame, true
}

// Allocated returns the number of frames handed out so far.
func (s *FrameSource) Allocated() uint64 {
	return s.next
}

// Remaining returns the number of frames still available.
func (s *FrameSource) Remaining() uint64 {
	var total uint64
	for _, r := range s.usable {
		first, end := r.frames()
		total += uint64(end - first)
	}
	return total - s.next
}

// nth returns the n-th frame (zero based) of the flattened usable frame
// sequence.
func (s *FrameSource) nth(n uint64) (Frame, bool) {
	for _, r := range s.usable {
		first, end := r.frames()
		count := uint64(end - first)
		if n < count {
			return first + Frame(n), true
		}
		n -= count
	}
	return InvalidFrame, false
}
