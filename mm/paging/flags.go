package paging

import "strings"

// Flags describes the access flags of a page mapping.
type Flags uintptr

const (
	// FlagPresent is set when the page is mapped.
	FlagPresent Flags = 1 << iota

	// FlagWritable allows writes to the page.
	FlagWritable

	// FlagUserAccessible allows access from user mode.
	FlagUserAccessible

	// FlagNoExecute forbids instruction fetches from the page.
	FlagNoExecute
)

// HasFlags returns true if all the input flags are set.
func (f Flags) HasFlags(flags Flags) bool {
	return f&flags == flags
}

// String renders the set flags, e.g. "present|writable".
func (f Flags) String() string {
	var parts []string
	for _, fl := range []struct {
		flag Flags
		name string
	}{
		{FlagPresent, "present"},
		{FlagWritable, "writable"},
		{FlagUserAccessible, "user"},
		{FlagNoExecute, "nx"},
	} {
		if f.HasFlags(fl.flag) {
			parts = append(parts, fl.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
