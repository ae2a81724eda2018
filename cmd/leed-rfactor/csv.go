package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	rfactor "github.com/tphakala/go-leed-rfactor"
)

// readBeamTable loads a beam table from a CSV file. The first column is
// the energy in eV, every further column one beam's intensity. Empty
// cells at the top or bottom of a column mark energies outside the
// beam's range; empty cells in the middle of a column are an error.
// Lines starting with '#' are comments, and a non-numeric first row is
// treated as a header.
func readBeamTable(path string) (*rfactor.BeamSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true

	var energies []float64
	var columns [][]float64 // [beam][sample], NaN-free; defined tracks validity
	var defined [][]bool

	row := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		row++

		e, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			if row == 1 {
				continue // header
			}
			return nil, fmt.Errorf("%s row %d: bad energy %q", path, row, record[0])
		}

		if columns == nil {
			nBeams := len(record) - 1
			if nBeams < 1 {
				return nil, fmt.Errorf("%s: need at least one intensity column", path)
			}
			columns = make([][]float64, nBeams)
			defined = make([][]bool, nBeams)
		}
		if len(record)-1 != len(columns) {
			return nil, fmt.Errorf("%s row %d: %d columns, expected %d",
				path, row, len(record), len(columns)+1)
		}

		energies = append(energies, e)
		for b := 0; b < len(columns); b++ {
			cell := strings.TrimSpace(record[b+1])
			if cell == "" || cell == "-" {
				columns[b] = append(columns[b], 0)
				defined[b] = append(defined[b], false)
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d beam %d: bad intensity %q", path, row, b+1, cell)
			}
			columns[b] = append(columns[b], v)
			defined[b] = append(defined[b], true)
		}
	}

	if len(energies) == 0 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}

	set := &rfactor.BeamSet{
		Energies:  energies,
		Intensity: columns,
		Spans:     make([]rfactor.Span, len(columns)),
	}
	for b, def := range defined {
		span, err := columnSpan(def)
		if err != nil {
			return nil, fmt.Errorf("%s beam %d: %w", path, b+1, err)
		}
		set.Spans[b] = span
	}
	return set, set.Validate()
}

// columnSpan converts a per-sample validity mask into a contiguous span.
func columnSpan(defined []bool) (rfactor.Span, error) {
	first, last := -1, -1
	for i, d := range defined {
		if !d {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return rfactor.Span{}, nil
	}
	for i := first; i <= last; i++ {
		if !defined[i] {
			return rfactor.Span{}, fmt.Errorf("gap in intensity data at row %d", i+1)
		}
	}
	return rfactor.Span{Start: first, Len: last - first + 1}, nil
}
