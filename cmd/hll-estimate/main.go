// hll-estimate is a command-line front end for the HyperLogLog estimator
// core. It reads a stream of 32-bit integers from stdin and reports either
// the cardinality estimate or one of the intermediate artifacts (hash
// values, rho distribution, register contents) used to verify the core
// against reference fixtures.
//
// Input Format
// ============
//
// The input is whitespace-separated: the first token is the count N,
// followed by N integers. Values may be written in the signed or unsigned
// decimal view of their 32-bit pattern; -1 and 4294967295 denote the same
// value.
//
//	1000000
//	1 2 3 4 5 ...
//
// Modes
// =====
//
// estimate (default): feed every value into a fresh estimator and print
// the floating-point cardinality estimate.
//
//	hll-estimate -m 1024 < values.in
//
// rho-dist: print a "rho,count" CSV of the rank distribution of the hashed
// input. For uniformly distributed values roughly half the hashes have
// rho=1, a quarter rho=2, and so on. Inputs hashing to the all-zero
// pattern have no rank and are reported on a final "undefined" line.
//
// registers: feed every value and print the m register values on one line,
// space-separated. This is the register-sample format used to compare runs
// against recorded fixtures.
//
// hash: print the hash of each input value, one per line, as an unsigned
// decimal. Used for (input, expected-hash) fixture verification.
//
// Exit Codes
// ==========
//
// 0: Success.
// 1: Invalid flags or malformed input.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strconv"

	"hll.lopezb.com/internal/hyperloglog"
)

func main() {
	mode := flag.String("mode", "estimate", "Mode: estimate, rho-dist, registers, hash")
	m := flag.Int("m", 1024, "Register count (power of two in [16, 65536])")
	flag.Parse()

	if err := run(*mode, *m, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "hll-estimate: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches one invocation. It is separated from main so tests can
// drive the tool with in-memory readers and writers.
func run(mode string, m int, r io.Reader, w io.Writer) error {
	p, err := precisionFor(m)
	if err != nil {
		return err
	}

	values, err := readValues(r)
	if err != nil {
		return err
	}

	switch mode {
	case "estimate":
		return printEstimate(w, p, values)
	case "rho-dist":
		return printRhoDistribution(w, values)
	case "registers":
		return printRegisters(w, p, values)
	case "hash":
		return printHashes(w, values)
	}
	return fmt.Errorf("unknown mode %q", mode)
}

// precisionFor converts a register count to the precision parameter p,
// rejecting counts that are not powers of two in the supported range.
func precisionFor(m int) (int, error) {
	if m < 1<<hyperloglog.MinPrecision || m > 1<<hyperloglog.MaxPrecision || m&(m-1) != 0 {
		return 0, fmt.Errorf("register count must be a power of two in [%d, %d], got %d",
			1<<hyperloglog.MinPrecision, 1<<hyperloglog.MaxPrecision, m)
	}
	return bits.TrailingZeros(uint(m)), nil
}

// readValues parses the "N followed by N integers" input format.
func readValues(r io.Reader) ([]uint32, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("empty input: expected a value count")
	}

	n, err := strconv.Atoi(sc.Text())
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid value count %q", sc.Text())
	}

	values := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("expected %d values, got %d", n, i)
		}
		v, err := parseValue(sc.Text())
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return values, nil
}

// parseValue accepts both the unsigned and the signed decimal view of a
// 32-bit pattern; either way the raw bits are what the estimator sees.
func parseValue(s string) (uint32, error) {
	if u, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(u), nil
	}

	i, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return uint32(int32(i)), nil
}

func printEstimate(w io.Writer, p int, values []uint32) error {
	e, err := hyperloglog.New(p)
	if err != nil {
		return err
	}

	for _, v := range values {
		e.Add(v)
	}

	_, err = fmt.Fprintln(w, strconv.FormatFloat(e.Estimate(), 'f', -1, 64))
	return err
}

func printRhoDistribution(w io.Writer, values []uint32) error {
	// counts[1..32] tally the rank of each hashed value; inputs in the
	// kernel of the hash transform have no rank and are counted apart.
	var counts [33]int
	undefined := 0

	for _, v := range values {
		h := hyperloglog.Hash(v)
		if h == 0 {
			undefined++
			continue
		}
		rho, err := hyperloglog.Rho(h)
		if err != nil {
			return err
		}
		counts[rho]++
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "rho,count")
	for rho := 1; rho <= 32; rho++ {
		if counts[rho] == 0 {
			continue
		}
		fmt.Fprintf(bw, "%d,%d\n", rho, counts[rho])
	}
	if undefined > 0 {
		fmt.Fprintf(bw, "undefined,%d\n", undefined)
	}
	return bw.Flush()
}

func printRegisters(w io.Writer, p int, values []uint32) error {
	e, err := hyperloglog.New(p)
	if err != nil {
		return err
	}

	for _, v := range values {
		e.Add(v)
	}

	bw := bufio.NewWriter(w)
	for i, reg := range e.Registers() {
		if i > 0 {
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(strconv.Itoa(int(reg))); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

func printHashes(w io.Writer, values []uint32) error {
	bw := bufio.NewWriter(w)
	for _, v := range values {
		if _, err := fmt.Fprintln(bw, hyperloglog.Hash(v)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
