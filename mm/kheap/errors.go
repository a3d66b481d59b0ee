package kheap

import "errors"

var (
	// ErrAlreadyInitialized indicates a second Init call.
	ErrAlreadyInitialized = errors.New("kheap: already initialized")

	// ErrNotInitialized is the panic value for heap calls made before Init
	// completed.
	ErrNotInitialized = errors.New("kheap: not initialized")

	// ErrBadHeapRange indicates a heap range that is empty, not page aligned
	// or wraps the address space.
	ErrBadHeapRange = errors.New("kheap: bad heap range")

	// ErrUnknownKind indicates an unrecognised strategy name.
	ErrUnknownKind = errors.New("kheap: unknown allocator kind")
)
