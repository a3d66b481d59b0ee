package kheap

import (
	"fmt"
	"strings"
)

// Kind selects the allocation strategy behind a Heap. The set is closed.
type Kind int

const (
	// KindBump advances a cursor and only reclaims once every allocation is
	// freed. Best for: early boot, phase-based workloads.
	KindBump Kind = iota

	// KindFreeList is a first-fit free list with coalescing.
	// Best for: mixed sizes with little repetition.
	KindFreeList

	// KindSizeClass serves small requests from power-of-two classes and
	// larger ones from a free list. Best for: general use (default).
	KindSizeClass
)

var kindNames = [...]string{
	KindBump:      "bump",
	KindFreeList:  "freelist",
	KindSizeClass: "sizeclass",
}

// Kinds lists every strategy.
func Kinds() []Kind {
	return []Kind{KindBump, KindFreeList, KindSizeClass}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a strategy name as printed by String. Matching ignores
// case, dashes and underscores.
func ParseKind(s string) (Kind, error) {
	norm := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Kinds() {
		if norm == k.String() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
