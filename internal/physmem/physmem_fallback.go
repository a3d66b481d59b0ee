//go:build !unix

package physmem

// reserve allocates size bytes from the Go heap when anonymous mappings are
// not available.
func reserve(size int) ([]byte, func([]byte) error, error) {
	return make([]byte, size), func([]byte) error { return nil }, nil
}
