package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jgoulah/gridserve/internal/isotime"
	"github.com/jgoulah/gridserve/pkg/models"
)

// rowError carries the line of a bad row up to Load, which wraps it in a LoadError
type rowError struct {
	line int
	err  error
}

func (e *rowError) Error() string { return fmt.Sprintf("line %d: %v", e.line, e.err) }
func (e *rowError) Unwrap() error { return e.err }

// ReadCSV parses consumption readings from CSV. The first row is a header
// naming the columns; any row with a missing or unparsable field fails the
// whole read.
func ReadCSV(r io.Reader) ([]models.Reading, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading CSV header: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	timeCol, usageCol := findColumns(header)
	if usageCol == -1 {
		return nil, fmt.Errorf("%w: energy usage (header: %v)", ErrMissingColumn, header)
	}
	if timeCol == -1 {
		return nil, fmt.Errorf("%w: datetime (header: %v)", ErrMissingColumn, header)
	}

	var results []models.Reading
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &rowError{line: perr.Line, err: perr.Err}
			}
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		ts, err := isotime.Parse(record[timeCol])
		if err != nil {
			return nil, &rowError{line: line, err: fmt.Errorf("%w: %s: %v", ErrBadValue, header[timeCol], err)}
		}

		usage, err := parseUsage(record[usageCol])
		if err != nil {
			return nil, &rowError{line: line, err: fmt.Errorf("%w: %s: %v", ErrBadValue, header[usageCol], err)}
		}

		results = append(results, models.Reading{
			Timestamp:   ts,
			EnergyUsage: usage,
		})
	}

	return results, nil
}

// findColumns locates the usage column first so that a name like
// "EnergyUsage" is never mistaken for the timestamp.
func findColumns(header []string) (timeCol, usageCol int) {
	timeCol, usageCol = -1, -1
	for i, col := range header {
		colLower := strings.ToLower(strings.TrimSpace(col))
		switch {
		case usageCol == -1 && isUsageColumn(colLower):
			usageCol = i
		case timeCol == -1 && (strings.Contains(colLower, "date") || strings.Contains(colLower, "time")):
			timeCol = i
		}
	}
	return timeCol, usageCol
}

func isUsageColumn(name string) bool {
	for _, s := range []string{"usage", "energy", "kwh", "consumption"} {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// parseUsage parses a kWh value. NaN and infinities are rejected.
func parseUsage(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}
