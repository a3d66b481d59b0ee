// Package machine assembles the boot-time collaborators of the kernel heap on
// top of simulated hardware: physical RAM sized from a firmware memory map, a
// page table over that RAM and the boot frame allocator. BootHeap then runs
// the heap bootstrap against them exactly as the kernel's boot sequence does.
package machine

import (
	"errors"
	"fmt"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/logger"
	"github.com/joshuapare/kheap/internal/physmem"
	"github.com/joshuapare/kheap/mm"
	"github.com/joshuapare/kheap/mm/kheap"
	"github.com/joshuapare/kheap/mm/paging"
)

// ErrNoUsableMemory indicates a memory map without a single usable frame.
var ErrNoUsableMemory = errors.New("machine: no usable memory")

// Machine is a simulated single-address-space machine.
type Machine struct {
	MemoryMap mm.MemoryMap
	Phys      *physmem.Memory
	Table     *paging.OffsetPageTable
	Frames    *mm.FrameSource

	// Heap is set once BootHeap succeeds.
	Heap *kheap.Heap
}

// New validates memMap and reserves enough simulated RAM to back every usable
// frame in it.
func New(memMap mm.MemoryMap) (*Machine, error) {
	if err := memMap.Validate(); err != nil {
		return nil, err
	}
	if memMap.UsableFrames() == 0 {
		return nil, ErrNoUsableMemory
	}

	phys, err := physmem.New(memMap.End())
	if err != nil {
		return nil, fmt.Errorf("reserve physical memory: %w", err)
	}

	logger.Info("memory map", "map", memMap)
	return &Machine{
		MemoryMap: memMap,
		Phys:      phys,
		Table:     paging.NewOffsetPageTable(phys),
		Frames:    mm.NewFrameSource(memMap),
	}, nil
}

// BootHeap maps the heap range and initialises the heap over it.
func (m *Machine) BootHeap(cfg kheap.Config) (*kheap.Heap, error) {
	h, err := kheap.Boot(cfg, m.Table, m.Frames, m.Table)
	if err != nil {
		logger.Error("heap boot failed", "error", err)
		return nil, err
	}

	logger.Debug("frames used by heap",
		"frames", m.Frames.Allocated(),
		"remaining", m.Frames.Remaining(),
		"phys", format.Size(m.Phys.Size()).String(),
	)
	m.Heap = h
	return h, nil
}

// Close releases the simulated RAM. The heap must not be used afterwards.
func (m *Machine) Close() error {
	return m.Phys.Close()
}

// Boot is New followed by BootHeap. The machine is closed if the heap cannot
// be booted.
func Boot(memMap mm.MemoryMap, cfg kheap.Config) (*Machine, error) {
	m, err := New(memMap)
	if err != nil {
		return nil, err
	}
	if _, err := m.BootHeap(cfg); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}
