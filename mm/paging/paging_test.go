package paging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/physmem"
	"github.com/joshuapare/kheap/mm"
)

// newTestTable returns a page table over frames physical pages of simulated
// RAM.
func newTestTable(t *testing.T, frames int) *OffsetPageTable {
	t.Helper()

	phys, err := physmem.New(uintptr(frames) * format.PageSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = phys.Close() })

	return NewOffsetPageTable(phys)
}

// sliceSource hands out a fixed list of frames.
type sliceSource struct {
	frames []mm.Frame
}

func (s *sliceSource) Next() (mm.Frame, bool) {
	if len(s.frames) == 0 {
		return mm.InvalidFrame, false
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, true
}

func framesUpTo(n int) *sliceSource {
	s := &sliceSource{}
	for i := range n {
		s.frames = append(s.frames, mm.Frame(i))
	}
	return s
}

// failingMapper rejects the n-th mapping.
type failingMapper struct {
	calls  int
	failAt int
	err    error
}

func (m *failingMapper) Map(mm.Page, mm.Frame, Flags) error {
	m.calls++
	if m.calls == m.failAt {
		return m.err
	}
	return nil
}

var errMapperBroken = errors.New("mapper broken")
