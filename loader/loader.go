// Package loader reads tabular CSV exports of public-benefits data and
// cleans ad-hoc spreadsheet formatting into numeric monthly rows.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingColumns = errors.New("missing expected columns")
	ErrNoHeader       = errors.New("header marker not found")
	ErrNoRows         = errors.New("no rows survived cleaning")
)

// headerScanLimit bounds the marker scan to the top of the file where
// export tools place their preamble.
const headerScanLimit = 20

// Options controls how a tabular export is read and cleaned.
type Options struct {
	// HeaderRow is the zero-based index of the header row. Ignored when
	// HeaderMarker is set.
	HeaderRow int

	// HeaderMarker locates the header by scanning the first rows for a
	// cell containing this substring, e.g. "Participation Persons".
	HeaderMarker string

	// DateColumn names the column holding the period. Defaults to the
	// first column.
	DateColumn string

	// DateFormats are the accepted layouts, tried in order.
	DateFormats []string

	// RegionColumn optionally names the region label column.
	RegionColumn string

	// Columns are the required numeric columns. A column is matched by
	// exact name first, then by substring to survive header drift.
	Columns []string
}

// DefaultOptions matches the statewide monthly export: a one-row
// preamble and Month-Year dates like "Jan-14".
func DefaultOptions() *Options {
	return &Options{
		HeaderRow:   1,
		DateFormats: []string{"Jan-06", "Jan 2006"},
	}
}

// Row is one cleaned observation period for one region.
type Row struct {
	Date   time.Time
	Region string
	Values map[string]float64
}

// Table holds cleaned rows along with the count read before cleaning.
type Table struct {
	Rows     []Row
	RawCount int
}

// Load reads and cleans the CSV file at path.
func Load(path string, opt *Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open dataset, %w", err)
	}
	defer f.Close()
	return LoadFrom(f, opt)
}

// LoadFrom reads and cleans CSV content from r.
func LoadFrom(r io.Reader, opt *Options) (*Table, error) {
	if opt == nil {
		opt = DefaultOptions()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := findHeader(reader, opt)
	if err != nil {
		return nil, err
	}

	dateIdx, regionIdx, colIdx, err := resolveColumns(header, opt)
	if err != nil {
		return nil, err
	}

	table := &Table{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read record, %w", err)
		}
		table.RawCount++

		if dateIdx >= len(record) {
			continue
		}
		raw := strings.TrimSpace(record[dateIdx])
		if isSummaryRow(raw) {
			continue
		}
		date, ok := parseDate(raw, opt.DateFormats)
		if !ok {
			// Rows without a parseable period are dropped, not repaired.
			continue
		}

		row := Row{Date: date, Values: make(map[string]float64, len(colIdx))}
		if regionIdx >= 0 && regionIdx < len(record) {
			row.Region = strings.TrimSpace(record[regionIdx])
		}
		for name, idx := range colIdx {
			if idx >= len(record) {
				row.Values[name] = math.NaN()
				continue
			}
			row.Values[name] = CleanNumber(record[idx])
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoRows
	}
	sort.SliceStable(table.Rows, func(i, j int) bool {
		return table.Rows[i].Date.Before(table.Rows[j].Date)
	})
	return table, nil
}

func findHeader(reader *csv.Reader, opt *Options) ([]string, error) {
	if opt.HeaderMarker != "" {
		for i := 0; i < headerScanLimit; i++ {
			record, err := reader.Read()
			if err != nil {
				return nil, fmt.Errorf("%q, %w", opt.HeaderMarker, ErrNoHeader)
			}
			for _, cell := range record {
				if strings.Contains(cell, opt.HeaderMarker) {
					return record, nil
				}
			}
		}
		return nil, fmt.Errorf("%q, %w", opt.HeaderMarker, ErrNoHeader)
	}

	var header []string
	for i := 0; i <= opt.HeaderRow; i++ {
		record, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("unable to read header row %d, %w", opt.HeaderRow, err)
		}
		header = record
	}
	return header, nil
}

func resolveColumns(header []string, opt *Options) (dateIdx, regionIdx int, colIdx map[string]int, err error) {
	trimmed := make([]string, len(header))
	for i, h := range header {
		trimmed[i] = strings.TrimSpace(h)
	}

	dateIdx = 0
	if opt.DateColumn != "" {
		dateIdx = indexOf(trimmed, opt.DateColumn)
	}
	regionIdx = -1
	if opt.RegionColumn != "" {
		regionIdx = indexOf(trimmed, opt.RegionColumn)
	}

	colIdx = make(map[string]int, len(opt.Columns))
	var missing []string
	for _, name := range opt.Columns {
		idx := indexOf(trimmed, name)
		if idx < 0 {
			missing = append(missing, name)
			continue
		}
		colIdx[name] = idx
	}
	if opt.DateColumn != "" && dateIdx < 0 {
		missing = append(missing, opt.DateColumn)
	}
	if opt.RegionColumn != "" && regionIdx < 0 {
		missing = append(missing, opt.RegionColumn)
	}
	if len(missing) > 0 {
		return 0, 0, nil, fmt.Errorf("%s, %w", strings.Join(missing, ", "), ErrMissingColumns)
	}
	return dateIdx, regionIdx, colIdx, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	// Header names drift between export revisions, so fall back to a
	// substring match.
	for i, h := range header {
		if strings.Contains(h, name) {
			return i
		}
	}
	return -1
}

// isSummaryRow reports whether the period cell is an annual summary
// artifact like "FY 2023" or "ANNUAL AVERAGE".
func isSummaryRow(s string) bool {
	return strings.HasPrefix(s, "FY") || strings.Contains(s, "ANNUAL")
}

func parseDate(s string, formats []string) (time.Time, bool) {
	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CleanNumber parses a spreadsheet-formatted numeric cell, stripping
// thousands separators, asterisks, percent signs, and whitespace.
// Unparseable cells become NaN.
func CleanNumber(s string) float64 {
	s = strings.NewReplacer(",", "", "*", "", "%", "").Replace(s)
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
