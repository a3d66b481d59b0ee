package mm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/kheap/internal/format"
)

func TestFrameMethods(t *testing.T) {
	for frameIndex := uintptr(0); frameIndex < 128; frameIndex++ {
		frame := Frame(frameIndex)

		assert.True(t, frame.Valid(), "frame %d", frameIndex)
		assert.Equal(t, frameIndex<<format.PageShift, frame.Address())
		assert.Equal(t, frame, FrameFromAddress(frame.Address()+format.PageSize/2))
	}

	assert.False(t, InvalidFrame.Valid())
}

func TestPageMethods(t *testing.T) {
	page := PageFromAddress(0x4444_4444_0123)
	assert.Equal(t, uintptr(0x4444_4444_0000), page.Address())
	assert.Equal(t, page+1, PageFromAddress(0x4444_4444_1000))
}

func TestPageRange(t *testing.T) {
	tests := []struct {
		name        string
		start, size uintptr
		wantCount   uintptr
	}{
		{"empty", 0x1000, 0, 0},
		{"single byte", 0x1000, 1, 1},
		{"one page", 0x1000, 0x1000, 1},
		{"page plus one", 0x1000, 0x1001, 2},
		{"heap", 0x4444_4444_0000, 100 * 1024, 25},
		{"unaligned start", 0x1ff8, 16, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last, count := PageRange(tt.start, tt.size)
			assert.Equal(t, tt.wantCount, count)
			if count > 0 {
				assert.Equal(t, PageFromAddress(tt.start), first)
				assert.Equal(t, uintptr(last-first)+1, count)
			}
		})
	}
}
