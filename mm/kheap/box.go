package kheap

import "github.com/joshuapare/kheap/internal/format"

const wordSize = uintptr(format.WordSize)

// Box is a single heap-allocated word.
type Box struct {
	h    *Heap
	addr uintptr
}

// NewBox allocates a word on h and stores v in it.
func NewBox(h *Heap, v uint64) (*Box, error) {
	addr, err := h.Alloc(wordSize, wordSize)
	if err != nil {
		return nil, err
	}
	h.mem.WriteWord(addr, v)
	return &Box{h: h, addr: addr}, nil
}

// Addr returns the address of the boxed word.
func (b *Box) Addr() uintptr { return b.addr }

// Get reads the boxed value.
func (b *Box) Get() uint64 { return b.h.mem.ReadWord(b.addr) }

// Set overwrites the boxed value.
func (b *Box) Set(v uint64) { b.h.mem.WriteWord(b.addr, v) }

// Free returns the word to the heap. The box must not be used afterwards.
func (b *Box) Free() {
	b.h.Free(b.addr, wordSize, wordSize)
	b.addr = 0
}
