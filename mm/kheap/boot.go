package kheap

import (
	"fmt"

	"github.com/joshuapare/kheap/mm/paging"
)

// Boot maps cfg's heap range with frames from frames and returns a ready heap
// over it. Any error is fatal to boot; pages mapped before the failure stay
// mapped.
func Boot(cfg Config, mapper paging.Mapper, frames paging.FrameSource, mem Memory) (*Heap, error) {
	if err := paging.MapHeap(cfg.Start, cfg.Size, mapper, frames); err != nil {
		return nil, fmt.Errorf("heap initialization failed: %w", err)
	}

	h := NewFromConfig(cfg)
	if err := h.Init(mem, cfg.Start, cfg.Size); err != nil {
		return nil, fmt.Errorf("heap initialization failed: %w", err)
	}
	return h, nil
}
