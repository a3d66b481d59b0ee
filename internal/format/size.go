package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadSize indicates a size string ParseSize cannot read.
var ErrBadSize = errors.New("format: bad size")

// Size represents a memory block size in bytes.
type Size uint64

// Common memory block sizes.
const (
	Byte Size = 1
	Kb        = 1024 * Byte
	Mb        = 1024 * Kb
	Gb        = 1024 * Mb
)

// String renders the size using the largest unit that divides it exactly,
// e.g. "100KiB", "4MiB", "4097B".
func (s Size) String() string {
	switch {
	case s >= Gb && s%Gb == 0:
		return strconv.FormatUint(uint64(s/Gb), 10) + "GiB"
	case s >= Mb && s%Mb == 0:
		return strconv.FormatUint(uint64(s/Mb), 10) + "MiB"
	case s >= Kb && s%Kb == 0:
		return strconv.FormatUint(uint64(s/Kb), 10) + "KiB"
	default:
		return strconv.FormatUint(uint64(s), 10) + "B"
	}
}

var sizeSuffixes = []struct {
	suffix string
	unit   Size
}{
	{"GiB", Gb}, {"MiB", Mb}, {"KiB", Kb},
	{"G", Gb}, {"M", Mb}, {"K", Kb},
	{"B", Byte},
}

// ParseSize reads a size such as "100KiB", "4M", "4096" or "0x19000". Unit
// suffixes are binary and case-insensitive.
func ParseSize(s string) (Size, error) {
	str := strings.TrimSpace(s)
	unit := Byte
	for _, u := range sizeSuffixes {
		if len(str) > len(u.suffix) && strings.EqualFold(str[len(str)-len(u.suffix):], u.suffix) {
			// "0x1B" is a hex number, not 0x1 bytes.
			if u.unit == Byte && strings.HasPrefix(strings.ToLower(str), "0x") {
				break
			}
			str, unit = strings.TrimSpace(str[:len(str)-len(u.suffix)]), u.unit
			break
		}
	}

	n, err := strconv.ParseUint(str, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadSize, s)
	}
	if n != 0 && uint64(unit) > ^uint64(0)/n {
		return 0, fmt.Errorf("%w: %q overflows", ErrBadSize, s)
	}
	return Size(n) * unit, nil
}
