package main

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// inputGenerator produces n distinct pseudo-random 32-bit values derived
// from a seed. The stream is a counter fed through xxhash, so the same
// seed always yields the same input regardless of platform, and different
// seeds yield independent streams.
func inputGenerator(n int, seed uint64) []uint32 {
	seen := make(map[uint32]struct{}, n)
	values := make([]uint32, 0, n)

	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)

	for counter := uint64(0); len(values) < n; counter++ {
		binary.LittleEndian.PutUint64(buf[8:], counter)
		v := uint32(xxhash.Sum64(buf[:]))
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}

	return values
}
