// hll-trials measures the accuracy of the HyperLogLog estimator across
// repeated randomized trials and reports how the observed error compares
// to the theoretical standard error sigma = 1.04/sqrt(m).
//
// Each trial generates n distinct 32-bit values from a seeded stream,
// feeds them into one estimator per register count, and records the
// relative error of the estimate. The same input stream is shared by
// every register count within a trial so the sizes are compared on equal
// footing. Trials run concurrently, bounded by GOMAXPROCS.
//
// Output
// ======
//
// A CSV table on stdout, one row per register count:
//
//	m,avg_rel_error,within_sigma,within_two_sigma
//	128,0.058123,0.750,1.000
//	256,0.041990,0.625,1.000
//	...
//
// avg_rel_error is the mean relative error over all trials;
// within_sigma and within_two_sigma are the fractions of trials whose
// error fell inside one and two standard errors. Progress is logged to
// stderr.
//
// Usage
// =====
//
//	hll-trials -n 1000000 -trials 8 -seed 0 -m 128,256,512,1024

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/bits"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hll.lopezb.com/internal/hyperloglog"
)

// maxValues bounds the per-trial input size; beyond this the distinct
// 32-bit value space gets crowded and generation slows to a crawl.
const maxValues = 1 << 30

func main() {
	n := flag.Int("n", 1000000, "Distinct values per trial")
	trials := flag.Int("trials", 8, "Number of independent trials")
	seed := flag.Uint64("seed", 0, "Base seed for the input streams")
	mList := flag.String("m", "128,256,512,1024", "Comma-separated register counts")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ms, err := parseRegisterCounts(*mList)
	if err != nil {
		logger.Error("invalid -m flag", "error", err)
		os.Exit(1)
	}
	if *n < 1 || *n > maxValues {
		logger.Error("invalid -n flag", "n", *n, "max", maxValues)
		os.Exit(1)
	}
	if *trials < 1 {
		logger.Error("invalid -trials flag", "trials", *trials)
		os.Exit(1)
	}

	start := time.Now()
	logger.Info("starting trials",
		"n", *n,
		"trials", *trials,
		"seed", *seed,
		"register_counts", *mList,
	)

	results, err := runTrials(*n, *trials, *seed, ms, logger)
	if err != nil {
		logger.Error("trials failed", "error", err)
		os.Exit(1)
	}

	if err := writeReport(os.Stdout, results); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	logger.Info("done", "elapsed", time.Since(start).Round(time.Millisecond))
}

// parseRegisterCounts splits a comma-separated list of register counts
// and validates each one the same way the estimator will.
func parseRegisterCounts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	ms := make([]int, 0, len(parts))

	for _, part := range parts {
		m, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid register count %q", part)
		}
		if m < 1<<hyperloglog.MinPrecision || m > 1<<hyperloglog.MaxPrecision || m&(m-1) != 0 {
			return nil, fmt.Errorf("register count must be a power of two in [%d, %d], got %d",
				1<<hyperloglog.MinPrecision, 1<<hyperloglog.MaxPrecision, m)
		}
		ms = append(ms, m)
	}

	if len(ms) == 0 {
		return nil, fmt.Errorf("no register counts given")
	}
	return ms, nil
}

// result aggregates one register count's accuracy over all trials.
type result struct {
	m              int
	avgRelError    float64
	withinSigma    float64
	withinTwoSigma float64
}

// runTrials generates the per-trial input streams, estimates each stream
// with one estimator per register count, and aggregates the relative
// errors. Trials are independent, so both phases fan out on an errgroup
// bounded by the CPU count.
func runTrials(n, trials int, seed uint64, ms []int, logger *slog.Logger) ([]result, error) {
	inputs := make([][]uint32, trials)

	var gen errgroup.Group
	gen.SetLimit(runtime.GOMAXPROCS(0))
	for trial := 0; trial < trials; trial++ {
		trial := trial
		gen.Go(func() error {
			inputs[trial] = inputGenerator(n, seed+uint64(trial))
			return nil
		})
	}
	if err := gen.Wait(); err != nil {
		return nil, err
	}
	logger.Info("generated inputs", "trials", trials, "values_per_trial", n)

	// errors[mi][trial] is the relative error of register count ms[mi]
	// on trial's input stream.
	relErrors := make([][]float64, len(ms))
	for mi := range relErrors {
		relErrors[mi] = make([]float64, trials)
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for mi, m := range ms {
		p := bits.TrailingZeros(uint(m))
		for trial := 0; trial < trials; trial++ {
			mi, trial := mi, trial
			g.Go(func() error {
				e, err := hyperloglog.New(p)
				if err != nil {
					return err
				}
				for _, v := range inputs[trial] {
					e.Add(v)
				}
				relErrors[mi][trial] = math.Abs(e.Estimate()-float64(n)) / float64(n)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]result, 0, len(ms))
	for mi, m := range ms {
		sigma := 1.04 / math.Sqrt(float64(m))

		var total float64
		within, withinTwo := 0, 0
		for _, relErr := range relErrors[mi] {
			total += relErr
			if relErr <= sigma {
				within++
			}
			if relErr <= 2*sigma {
				withinTwo++
			}
		}

		res := result{
			m:              m,
			avgRelError:    total / float64(trials),
			withinSigma:    float64(within) / float64(trials),
			withinTwoSigma: float64(withinTwo) / float64(trials),
		}
		results = append(results, res)

		logger.Info("register count done",
			"m", m,
			"sigma", fmt.Sprintf("%.4f", sigma),
			"avg_rel_error", fmt.Sprintf("%.4f", res.avgRelError),
		)
	}

	return results, nil
}

func writeReport(w io.Writer, results []result) error {
	if _, err := fmt.Fprintln(w, "m,avg_rel_error,within_sigma,within_two_sigma"); err != nil {
		return err
	}
	for _, res := range results {
		_, err := fmt.Fprintf(w, "%d,%.6f,%.3f,%.3f\n",
			res.m, res.avgRelError, res.withinSigma, res.withinTwoSigma)
		if err != nil {
			return err
		}
	}
	return nil
}
