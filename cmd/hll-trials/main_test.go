package main

import (
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
)

func TestParseRegisterCounts(t *testing.T) {
	t.Run("valid lists", func(t *testing.T) {
		tests := []struct {
			input string
			want  []int
		}{
			{"1024", []int{1024}},
			{"128,256,512,1024", []int{128, 256, 512, 1024}},
			{"16, 65536", []int{16, 65536}},
		}

		for _, tt := range tests {
			got, err := parseRegisterCounts(tt.input)
			if err != nil {
				t.Errorf("parseRegisterCounts(%q) returned unexpected error: %v", tt.input, err)
				continue
			}
			if len(got) != len(tt.want) {
				t.Errorf("parseRegisterCounts(%q) = %v, want %v", tt.input, got, tt.want)
				continue
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("parseRegisterCounts(%q)[%d] = %d, want %d", tt.input, i, got[i], tt.want[i])
				}
			}
		}
	})

	t.Run("invalid lists", func(t *testing.T) {
		for _, input := range []string{
			"",
			"abc",
			"100",          // not a power of two
			"8",            // below the minimum
			"131072",       // above the maximum
			"128,,256",     // empty element
			"128,256,nope", // bad element
		} {
			if _, err := parseRegisterCounts(input); err == nil {
				t.Errorf("parseRegisterCounts(%q) should fail", input)
			}
		}
	})
}

func TestRunTrials(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("aggregates per register count", func(t *testing.T) {
		const (
			n      = 2000
			trials = 3
		)
		ms := []int{256, 1024}

		results, err := runTrials(n, trials, 0, ms, logger)
		if err != nil {
			t.Fatalf("runTrials returned unexpected error: %v", err)
		}
		if len(results) != len(ms) {
			t.Fatalf("got %d results, want %d", len(results), len(ms))
		}

		for i, res := range results {
			if res.m != ms[i] {
				t.Errorf("result %d has m=%d, want %d", i, res.m, ms[i])
			}
			t.Logf("m=%d avg_rel_error=%.4f within_sigma=%.2f within_two_sigma=%.2f",
				res.m, res.avgRelError, res.withinSigma, res.withinTwoSigma)

			// Loose sanity bound: errors at these sizes should stay far
			// below 10x the standard error.
			sigma := 1.04 / math.Sqrt(float64(res.m))
			if res.avgRelError > 10*sigma {
				t.Errorf("m=%d average relative error %.4f is implausibly high", res.m, res.avgRelError)
			}
			if res.withinTwoSigma < 0 || res.withinTwoSigma > 1 {
				t.Errorf("m=%d within_two_sigma=%v out of [0, 1]", res.m, res.withinTwoSigma)
			}
			if res.withinSigma > res.withinTwoSigma {
				t.Errorf("m=%d within_sigma=%v exceeds within_two_sigma=%v",
					res.m, res.withinSigma, res.withinTwoSigma)
			}
		}
	})

	t.Run("deterministic for a seed", func(t *testing.T) {
		first, err := runTrials(1000, 2, 9, []int{512}, logger)
		if err != nil {
			t.Fatalf("runTrials returned unexpected error: %v", err)
		}
		second, err := runTrials(1000, 2, 9, []int{512}, logger)
		if err != nil {
			t.Fatalf("runTrials returned unexpected error: %v", err)
		}

		if first[0].avgRelError != second[0].avgRelError {
			t.Errorf("same seed produced different errors: %v vs %v",
				first[0].avgRelError, second[0].avgRelError)
		}
	})
}

func TestWriteReport(t *testing.T) {
	results := []result{
		{m: 128, avgRelError: 0.058123, withinSigma: 0.75, withinTwoSigma: 1},
		{m: 1024, avgRelError: 0.021009, withinSigma: 0.875, withinTwoSigma: 1},
	}

	var out strings.Builder
	if err := writeReport(&out, results); err != nil {
		t.Fatalf("writeReport returned unexpected error: %v", err)
	}

	want := "m,avg_rel_error,within_sigma,within_two_sigma\n" +
		"128,0.058123,0.750,1.000\n" +
		"1024,0.021009,0.875,1.000\n"

	if out.String() != want {
		t.Errorf("report = %q, want %q", out.String(), want)
	}
}
