package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Tract is one census tract from the mRFEI retail food environment
// export. Score is the 0-100 healthy access estimate, Healthy and Total
// count retailers.
type Tract struct {
	ID      string
	Name    string
	Healthy float64
	Total   float64
	Score   float64
}

// retail export column names
var retailColumns = []string{"county_name", "geotype", "geotypevalue", "numerator", "denominator", "estimate"}

// LoadTracts reads the mRFEI export and returns the census-tract rows
// for one county. Rows describing whole counties or the state are
// skipped.
func LoadTracts(path, county string) ([]Tract, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open retail index dataset, %w", err)
	}
	defer f.Close()
	return LoadTractsFrom(f, county)
}

// LoadTractsFrom reads mRFEI CSV content from r.
func LoadTractsFrom(r io.Reader, county string) ([]Tract, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read retail index header, %w", err)
	}

	idx := make(map[string]int, len(retailColumns))
	var missing []string
	for _, name := range retailColumns {
		i := indexOf(header, name)
		if i < 0 {
			missing = append(missing, name)
			continue
		}
		idx[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s, %w", strings.Join(missing, ", "), ErrMissingColumns)
	}

	var tracts []Tract
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read retail index record, %w", err)
		}
		if cell(record, idx["county_name"]) != county || cell(record, idx["geotype"]) != "CT" {
			continue
		}
		id := cell(record, idx["geotypevalue"])
		t := Tract{
			ID:      id,
			Name:    tractName(id),
			Healthy: CleanNumber(cell(record, idx["numerator"])),
			Total:   CleanNumber(cell(record, idx["denominator"])),
			Score:   CleanNumber(cell(record, idx["estimate"])),
		}
		if math.IsNaN(t.Total) || math.IsNaN(t.Score) {
			continue
		}
		tracts = append(tracts, t)
	}
	return tracts, nil
}

func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// tractName renders a FIPS geotype value as a census tract label,
// e.g. "355112" becomes "Census Tract 3551.12". Leading digits encoding
// the state and county are dropped first.
func tractName(id string) string {
	var code string
	switch len(id) {
	case 10:
		code = id[5:]
	case 9:
		code = id[4:]
	default:
		if len(id) < 6 {
			return "Census Tract " + id
		}
		code = id[len(id)-6:]
	}
	return fmt.Sprintf("Census Tract %s.%s", code[:len(code)-2], code[len(code)-2:])
}
