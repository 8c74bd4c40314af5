package tiers

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Tier maps a band of absolute latitudes to the degree delta used when
// nudging the longitude step. AbsLatLimit is the exclusive upper bound of
// the band; the final tier may use +Inf as a catch-all.
type Tier struct {
	AbsLatLimit float64
	Delta       float64
}

// Table is an ordered list of tiers with ascending latitude limits.
type Table []Tier

// Default returns the built-in tier table. Longitude lines converge toward
// the poles, so the nudge grows coarser at high latitudes.
func Default() Table {
	return Table{
		{AbsLatLimit: 75, Delta: 0.0001},
		{AbsLatLimit: 85, Delta: 0.001},
		{AbsLatLimit: math.Inf(1), Delta: 0.01},
	}
}

// Delta returns the step delta for the given latitude. Latitudes beyond the
// last tier's limit fall back to the last tier.
func (t Table) Delta(lat float64) float64 {
	abs := math.Abs(lat)
	for _, tier := range t {
		if abs < tier.AbsLatLimit {
			return tier.Delta
		}
	}
	return t[len(t)-1].Delta
}

// Validate checks a table for use by the tiler: at least one tier, positive
// deltas, strictly ascending latitude limits.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("tier table is empty")
	}
	prev := math.Inf(-1)
	for i, tier := range t {
		if tier.Delta <= 0 {
			return fmt.Errorf("tier %d: delta must be positive, got %g", i, tier.Delta)
		}
		if tier.AbsLatLimit <= prev {
			return fmt.Errorf("tier %d: latitude limits must be ascending, got %g after %g",
				i, tier.AbsLatLimit, prev)
		}
		prev = tier.AbsLatLimit
	}
	return nil
}

// Load reads a tier table from a text file, one tier per line:
//
//	<absLatLimit> <deltaDegrees>
//
// Blank lines and lines starting with # are skipped. The limit may be "*"
// on the final line as a catch-all for all remaining latitudes.
func Load(filename string) (Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening tier file: %v", err)
	}
	defer file.Close()

	table := Table{}
	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected '<absLatLimit> <delta>', got %q", lineNo, line)
		}

		var limit float64
		if fields[0] == "*" {
			limit = math.Inf(1)
		} else {
			limit, err = strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid latitude limit %q", lineNo, fields[0])
			}
		}

		delta, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid delta %q", lineNo, fields[1])
		}

		table = append(table, Tier{AbsLatLimit: limit, Delta: delta})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading tier file: %v", err)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("tier file %s: %w", filename, err)
	}
	return table, nil
}
