package main

import "testing"

func TestInputGenerator(t *testing.T) {
	t.Run("produces the requested count", func(t *testing.T) {
		for _, n := range []int{0, 1, 100, 5000} {
			if got := len(inputGenerator(n, 0)); got != n {
				t.Errorf("inputGenerator(%d, 0) produced %d values", n, got)
			}
		}
	})

	t.Run("values are distinct", func(t *testing.T) {
		values := inputGenerator(10000, 7)
		seen := make(map[uint32]struct{}, len(values))
		for _, v := range values {
			if _, dup := seen[v]; dup {
				t.Fatalf("duplicate value %d in generated stream", v)
			}
			seen[v] = struct{}{}
		}
	})

	t.Run("deterministic for a seed", func(t *testing.T) {
		a := inputGenerator(1000, 42)
		b := inputGenerator(1000, 42)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("value %d differs between runs: %d vs %d", i, a[i], b[i])
			}
		}
	})

	t.Run("seeds diverge", func(t *testing.T) {
		a := inputGenerator(1000, 1)
		b := inputGenerator(1000, 2)

		same := 0
		for i := range a {
			if a[i] == b[i] {
				same++
			}
		}
		if same == len(a) {
			t.Error("different seeds produced identical streams")
		}
	})
}
