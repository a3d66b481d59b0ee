package mm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/kheap/internal/format"
)

// ErrBadRegion is returned by MemoryMap.Validate for malformed regions.
var ErrBadRegion = errors.New("mm: bad memory region")

// RegionKind describes the firmware classification of a physical memory range.
type RegionKind uint32

const (
	// RegionUsable is RAM that is free for the kernel to use.
	RegionUsable RegionKind = iota + 1

	// RegionReserved is memory that must not be touched.
	RegionReserved

	// RegionACPIReclaimable holds ACPI tables; reusable once they are parsed.
	RegionACPIReclaimable

	// RegionACPINVS must be preserved across sleep states.
	RegionACPINVS

	// RegionBadMemory is RAM reported as defective.
	RegionBadMemory
)

var regionKindNames = map[RegionKind]string{
	RegionUsable:          "usable",
	RegionReserved:        "reserved",
	RegionACPIReclaimable: "acpi-reclaimable",
	RegionACPINVS:         "acpi-nvs",
	RegionBadMemory:       "bad",
}

// String implements fmt.Stringer for RegionKind.
func (k RegionKind) String() string {
	if name, ok := regionKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseRegionKind is the inverse of RegionKind.String.
func ParseRegionKind(s string) (RegionKind, error) {
	for k, name := range regionKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("mm: unknown region kind %q", s)
}

// MemoryRegion is a physical address range [Start, End) as reported by the
// firmware. Reported bounds need not be page aligned.
type MemoryRegion struct {
	Start uintptr
	End   uintptr
	Kind  RegionKind
}

// Len returns the region length in bytes.
func (r MemoryRegion) Len() uintptr {
	return r.End - r.Start
}

// frames returns the half-open frame range fully contained in the region.
// Partial pages at either end are excluded.
func (r MemoryRegion) frames() (first, end Frame) {
	first = FrameFromAddress(format.PageAlignUp(r.Start))
	end = FrameFromAddress(format.PageAlignDown(r.End))
	if end < first {
		end = first
	}
	return first, end
}

// MemoryMap is the ordered list of regions handed over by the bootloader.
type MemoryMap []MemoryRegion

// Validate checks that every region is well formed.
func (m MemoryMap) Validate() error {
	for i, r := range m {
		if r.End < r.Start {
			return fmt.Errorf("%w: region %d [%#x, %#x) ends before it starts", ErrBadRegion, i, r.Start, r.End)
		}
		if _, ok := regionKindNames[r.Kind]; !ok {
			return fmt.Errorf("%w: region %d has unknown kind %d", ErrBadRegion, i, r.Kind)
		}
	}
	return nil
}

// Usable returns the regions tagged RegionUsable in their original order.
func (m MemoryMap) Usable() MemoryMap {
	var out MemoryMap
	for _, r := range m {
		if r.Kind == RegionUsable {
			out = append(out, r)
		}
	}
	return out
}

// TotalUsable returns the number of bytes in whole usable frames.
func (m MemoryMap) TotalUsable() format.Size {
	var total format.Size
	for _, r := range m.Usable() {
		first, end := r.frames()
		total += format.Size(uintptr(end-first) << format.PageShift)
	}
	return total
}

// UsableFrames returns the number of whole frames across usable regions.
func (m MemoryMap) UsableFrames() uint64 {
	return uint64(m.TotalUsable()) >> format.PageShift
}

// End returns the page-aligned end of the highest usable region, i.e. the
// amount of physical memory needed to back every usable frame.
func (m MemoryMap) End() uintptr {
	var end uintptr
	for _, r := range m.Usable() {
		if r.End > end {
			end = r.End
		}
	}
	return format.PageAlignDown(end)
}

// LogValue implements slog.LogValuer.
func (m MemoryMap) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("regions", len(m)),
		slog.Int("usable_regions", len(m.Usable())),
		slog.String("usable", m.TotalUsable().String()),
		slog.Uint64("usable_frames", m.UsableFrames()),
	)
}

// QEMUMemoryMap is the memory map reported by QEMU for a 128MiB x86_64 guest.
// It is used whenever no explicit map is supplied.
func QEMUMemoryMap() MemoryMap {
	return MemoryMap{
		{Start: 0x0, End: 0x9fc00, Kind: RegionUsable},
		{Start: 0x9fc00, End: 0xa0000, Kind: RegionReserved},
		{Start: 0xf0000, End: 0x100000, Kind: RegionReserved},
		{Start: 0x100000, End: 0x7fe0000, Kind: RegionUsable},
		{Start: 0x7fe0000, End: 0x8000000, Kind: RegionReserved},
		{Start: 0xfffc0000, End: 0x100000000, Kind: RegionReserved},
	}
}
