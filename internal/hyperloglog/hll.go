// Package hyperloglog implements the HyperLogLog algorithm for cardinality
// estimation over streams of 32-bit values.
//
// HyperLogLog is a probabilistic data structure that estimates the number of
// distinct elements in a multiset using a fixed amount of memory, regardless
// of the actual cardinality. This implementation follows the original
// Flajolet et al. formulation:
//
//   - A 32-bit hash function, giving reliable estimates up to cardinalities
//     in the hundreds of millions.
//   - A configurable precision p, with m = 2^p registers of one byte each.
//   - The classic bias corrections: linear counting for the small range and
//     the hash-space saturation correction for the large range.
//
// The Algorithm
// =============
//
// The algorithm exploits a statistical property of uniformly distributed
// hash values: the probability of a hash starting with k leading zeros is
// 1/2^k. By observing the maximum leading-zero run across many hashes, the
// number of unique items processed can be estimated.
//
// To reduce variance, the hash space is partitioned into m registers. Each
// added value is hashed to a 32-bit pattern, which is then split:
//
//  1. The top p bits select one of the m = 2^p registers.
//  2. The remaining q = 32-p bits determine the "rank": the position of the
//     first 1-bit scanning from the most significant end, plus one. An
//     all-zero remainder yields the maximum rank q+1.
//
// Each register stores the maximum rank ever observed for values hashing to
// that bucket. The estimate is a scaled harmonic mean of 2^(-rank) across
// all registers, with range-dependent bias corrections.
//
// Unlike most production HLLs, the hash function here is not a generic byte
// hash but a fixed linear transform over GF(2) (see Hash). It is exposed as
// a standalone function, together with Rho, so external tooling can verify
// both against reference fixtures.
//
// The Estimator is not safe for concurrent use. It owns its register array
// exclusively; callers that share one across goroutines must serialize
// access themselves.
package hyperloglog

import (
	"fmt"
	"math"
)

// Precision bounds. The lower bound is the smallest m (16) for which a
// tabulated alpha constant exists; the upper bound keeps the bucket index
// to at most half of the 32 hash bits.
const (
	MinPrecision = 4
	MaxPrecision = 16
)

// two32 is the size of the 32-bit hash space as a float, used by the
// large-range correction.
const two32 = 4294967296.0

// Estimator is a single HyperLogLog sketch. It is created with a fixed
// precision and mutated only by Add and Merge; registers are monotonically
// non-decreasing over its lifetime.
type Estimator struct {
	p         uint8
	m         uint32
	alpha     float64
	registers []uint8
}

// New creates an Estimator with 2^p registers, all zero.
// The precision p must be in [MinPrecision, MaxPrecision].
func New(p int) (*Estimator, error) {
	if p < MinPrecision || p > MaxPrecision {
		return nil, fmt.Errorf("hyperloglog: precision %d out of range [%d, %d]", p, MinPrecision, MaxPrecision)
	}

	m := uint32(1) << p
	return &Estimator{
		p:         uint8(p),
		m:         m,
		alpha:     alphaFor(m),
		registers: make([]uint8, m),
	}, nil
}

// alphaFor returns the bias-correction constant alpha_m. The values for
// m=16, 32 and 64 are the tabulated constants from the HyperLogLog paper;
// larger register counts use the asymptotic formula.
func alphaFor(m uint32) float64 {
	switch m {
	case 16:
		return 0.673
	case 32:
		return 0.697
	case 64:
		return 0.709
	}
	return 0.7213 / (1 + 1.079/float64(m))
}

// Add incorporates a value into the sketch. It never fails and never
// decreases a register, so adding the same value twice is a no-op after
// the first insertion.
func (e *Estimator) Add(v uint32) {
	h := Hash(v)

	// The top p bits of the hash select the register.
	j := h >> (32 - e.p)

	// The remaining q = 32-p bits determine the rank. Shifting the hash
	// left by p re-widens the remainder to 32 bits, and OR-ing in a
	// sentinel bit at position p-1 (strictly below the shifted remainder)
	// guarantees the value passed to Rho is nonzero. The sentinel also
	// caps the rank: an all-zero remainder leaves only the sentinel set,
	// which sits 32-p bit positions down, so Rho returns exactly q+1.
	w := h<<e.p | 1<<(e.p-1)

	rank, _ := Rho(w) // w is never zero, so Rho cannot fail here
	if rank > e.registers[j] {
		e.registers[j] = rank
	}
}

// Estimate returns the current cardinality estimate. It is a pure read:
// calling it repeatedly without intervening Adds returns identical values.
func (e *Estimator) Estimate() float64 {
	// Raw estimate: a harmonic mean of 2^(-register) across all buckets,
	// scaled by alpha_m * m^2.
	var sum float64
	zeros := 0
	for _, reg := range e.registers {
		sum += math.Exp2(-float64(reg))
		if reg == 0 {
			zeros++
		}
	}

	m := float64(e.m)
	est := e.alpha * m * m / sum

	switch {
	case est <= 2.5*m:
		// Small range: with registers still at zero, linear counting over
		// the empty buckets is more accurate than the raw formula.
		if zeros > 0 {
			est = m * math.Log(m/float64(zeros))
		}
	case est > two32/30:
		// Large range: the raw estimate approaches the 32-bit hash space
		// limit, so correct for hash collisions.
		est = -two32 * math.Log(1-est/two32)
	}

	return est
}

// Merge folds another sketch into this one, register by register, using the
// max rule. The result estimates the cardinality of the union of the two
// streams. Both estimators must have the same precision.
func (e *Estimator) Merge(other *Estimator) error {
	if other.p != e.p {
		return fmt.Errorf("hyperloglog: precision mismatch: %d != %d", e.p, other.p)
	}

	for i, r := range other.registers {
		if r > e.registers[i] {
			e.registers[i] = r
		}
	}
	return nil
}

// Precision returns the precision parameter p.
func (e *Estimator) Precision() int {
	return int(e.p)
}

// M returns the number of registers.
func (e *Estimator) M() int {
	return int(e.m)
}

// Registers returns a copy of the register array. It is intended for
// register-sample tooling and fixtures; mutating the returned slice does
// not affect the sketch.
func (e *Estimator) Registers() []uint8 {
	out := make([]uint8, len(e.registers))
	copy(out, e.registers)
	return out
}
