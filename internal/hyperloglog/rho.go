package hyperloglog

import (
	"errors"
	"math/bits"
)

// ErrRhoZero is returned by Rho for an all-zero input, which has no most
// significant set bit. Seeing it means the caller violated Rho's contract;
// it is a logic defect, not a transient condition.
var ErrRhoZero = errors.New("hyperloglog: rho of zero is undefined")

// Rho returns the position of the most significant set bit of x, counted
// from the top: Rho(1<<31) == 1 and Rho(1) == 32. The result is always in
// [1, 32] for nonzero input.
func Rho(x uint32) (uint8, error) {
	if x == 0 {
		return 0, ErrRhoZero
	}
	return uint8(bits.LeadingZeros32(x)) + 1, nil
}
