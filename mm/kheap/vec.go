package kheap

import "fmt"

// minVecCap is the capacity of a Vec's first allocation.
const minVecCap = 4

// Vec is a growable sequence of words stored on the heap. Capacity doubles
// when full; growing moves the elements with Heap.Realloc.
type Vec struct {
	h    *Heap
	addr uintptr
	len  int
	cap  int
}

// NewVec returns an empty Vec on h. No memory is allocated until the first
// Push.
func NewVec(h *Heap) *Vec {
	return &Vec{h: h}
}

// Len returns the number of elements.
func (v *Vec) Len() int { return v.len }

// Cap returns the number of elements that fit without growing.
func (v *Vec) Cap() int { return v.cap }

// Addr returns the address of the backing block, 0 before the first Push.
func (v *Vec) Addr() uintptr { return v.addr }

// Push appends x, growing the backing block if needed.
func (v *Vec) Push(x uint64) error {
	if v.len == v.cap {
		if err := v.grow(max(minVecCap, 2*v.cap)); err != nil {
			return err
		}
	}
	v.h.mem.WriteWord(v.elem(v.len), x)
	v.len++
	return nil
}

func (v *Vec) grow(newCap int) error {
	addr, err := v.h.Realloc(v.addr, uintptr(v.cap)*wordSize, wordSize, uintptr(newCap)*wordSize)
	if err != nil {
		return fmt.Errorf("grow vec to %d elements: %w", newCap, err)
	}
	v.addr, v.cap = addr, newCap
	return nil
}

func (v *Vec) elem(i int) uintptr {
	return v.addr + uintptr(i)*wordSize
}

func (v *Vec) check(i int) {
	if i < 0 || i >= v.len {
		panic(fmt.Sprintf("kheap: vec index %d out of range [0, %d)", i, v.len))
	}
}

// Get returns element i.
func (v *Vec) Get(i int) uint64 {
	v.check(i)
	return v.h.mem.ReadWord(v.elem(i))
}

// Set overwrites element i.
func (v *Vec) Set(i int, x uint64) {
	v.check(i)
	v.h.mem.WriteWord(v.elem(i), x)
}

// Sum adds up every element.
func (v *Vec) Sum() uint64 {
	var total uint64
	for i := range v.len {
		total += v.h.mem.ReadWord(v.elem(i))
	}
	return total
}

// Free releases the backing block and empties the Vec.
func (v *Vec) Free() {
	if v.addr != 0 {
		v.h.Free(v.addr, uintptr(v.cap)*wordSize, wordSize)
	}
	*v = Vec{h: v.h}
}
