// Command vebstat builds a vebset.VebSet from a stream of unsigned
// integers and reports size, universe, and allocation statistics. It
// exists purely for ad hoc inspection; it is not part of the vebset API.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ephraimfeldblum/vebset/vebset"
)

func main() {
	rangeLo := flag.Uint64("range-lo", 0, "lower bound for a CountRange report (inclusive)")
	rangeHi := flag.Uint64("range-hi", 0, "upper bound for a CountRange report (inclusive); 0 means skip")
	flag.Parse()

	v, lines, err := buildFromStdin(os.Stdin)
	if err != nil {
		log.Fatalf("vebstat: reading input: %v", err)
	}

	fmt.Printf("lines read:        %d\n", lines)
	fmt.Printf("size:              %d\n", v.Size())
	fmt.Printf("universe_size:     %d\n", v.UniverseSize())
	fmt.Printf("allocated_memory:  %d bytes\n", v.AllocatedMemory())
	if mn, ok := v.Min(); ok {
		fmt.Printf("min:               %d\n", mn)
	}
	if mx, ok := v.Max(); ok {
		fmt.Printf("max:               %d\n", mx)
	}
	totalClusters, maxDepth, totalNodes := v.Stats()
	fmt.Printf("total_clusters:    %d\n", totalClusters)
	fmt.Printf("max_depth:         %d\n", maxDepth)
	fmt.Printf("total_nodes:       %d\n", totalNodes)
	if *rangeHi > 0 {
		fmt.Printf("count_range(%d,%d): %d\n", *rangeLo, *rangeHi, v.CountRange(*rangeLo, *rangeHi))
	}
}

// buildFromStdin reads one unsigned integer per line, inserting each into
// a fresh VebSet. Blank lines are skipped; a malformed line is fatal.
func buildFromStdin(f *os.File) (*vebset.VebSet, int, error) {
	v := vebset.New()
	scanner := bufio.NewScanner(f)
	lines := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		k, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			return nil, lines, fmt.Errorf("line %d: %q: %w", lines+1, line, err)
		}
		v.Insert(k)
		lines++
	}
	if err := scanner.Err(); err != nil {
		return nil, lines, err
	}
	return v, lines, nil
}
