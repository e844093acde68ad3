package hyperloglog

import "math/bits"

// hashMatrix is the fixed 32x32 binary matrix behind Hash, one row mask per
// output bit. It is a process-wide constant: every Estimator shares the same
// transform, so two sketches fed the same stream are register-identical.
var hashMatrix = [32]uint32{
	0x21ae4036, 0x32435171, 0xac3338cf,
	0xea97b40c, 0x0e504b22, 0x9ff9a4ef,
	0x111d014d, 0x934f3787, 0x6cd079bf,
	0x69db5c31, 0xdf3c28ed, 0x40daf2ad,
	0x82a5891c, 0x4659c7b0, 0x73dc0ca8,
	0xdad3aca2, 0x00c74c7e, 0x9a2521e2,
	0xf38eb6aa, 0x64711ab6, 0x5823150a,
	0xd13a3a9a, 0x30a5aa04, 0x0fb9a1da,
	0xef785119, 0xc9f0b067, 0x1e7dde42,
	0xdda4a7b2, 0x1a1c2640, 0x297c0633,
	0x744edb48, 0x19adce93,
}

// Hash maps a 32-bit value onto a pseudo-random 32-bit pattern.
//
// The input is treated as a bit vector over GF(2) and multiplied by the
// fixed hashMatrix: output bit i is the parity of x AND hashMatrix[i].
// A linear transform like this flips, on average, half the output bits for
// any single-bit change of the input, which is what the rank statistics
// downstream rely on.
//
// Hash is pure and total. Note that Hash(0) == 0: the zero vector is in the
// kernel of every linear map, and a zero hash is a valid output, not an
// error.
func Hash(x uint32) uint32 {
	var h uint32
	for i, row := range hashMatrix {
		// OnesCount32 & 1 is the XOR-fold of all 32 bits of the AND.
		h |= uint32(bits.OnesCount32(x&row)&1) << i
	}
	return h
}
