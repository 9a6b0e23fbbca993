// Package safeconv provides checked integer conversions that report overflow
// instead of wrapping.
package safeconv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a value does not fit the target type.
var ErrOverflow = errors.New("integer overflow")

// ToUint32 converts v to uint32. Negative values and values above
// math.MaxUint32 fail with ErrOverflow.
func ToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit uint32", ErrOverflow, v)
	}

	return uint32(v), nil
}

// ToInt64 converts v to int64. Values above math.MaxInt64 fail with
// ErrOverflow.
func ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d does not fit int64", ErrOverflow, v)
	}

	return int64(v), nil
}

// ToInt converts v to int. It cannot fail on the 64-bit platforms the
// binary format targets.
func ToInt(v uint32) int {
	return int(v)
}
