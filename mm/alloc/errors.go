package alloc

import "errors"

var (
	// ErrOutOfMemory indicates that no free block large enough was found.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrInvalidLayout indicates a non power-of-two alignment or a size that
	// overflows once rounded.
	ErrInvalidLayout = errors.New("alloc: invalid size or alignment")

	// ErrBadRange indicates an unusable range passed to Init.
	ErrBadRange = errors.New("alloc: bad heap range")

	// ErrBadConfig indicates an invalid size class configuration.
	ErrBadConfig = errors.New("alloc: bad size class configuration")
)
