package cohort

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the day-month-year format used by the registry export.
const DateLayout = "02-01-2006"

// Table holds a raw CSV table addressed by column name.
type Table struct {
	path string
	cols map[string]int
	Rows [][]string
}

// Load reads a raw CSV export into memory. Only structural problems
// (missing file, ragged rows, absent columns) are detected here; cell-level
// coercion happens during cleaning and fails on first bad value.
func Load(path string) (*Table, error) {

	fid, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fid.Close()

	rd := csv.NewReader(fid)

	head, err := rd.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}

	cols := make(map[string]int)
	for k, v := range head {
		cols[strings.TrimSpace(v)] = k
	}

	t := &Table{path: path, cols: cols}

	for {
		row, err := rd.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// Get returns the named cell of a row, or an error when the column is not in
// the file at all.
func (t *Table) Get(row []string, col string) (string, error) {
	p, ok := t.cols[col]
	if !ok {
		return "", fmt.Errorf("%s: no column %q", t.path, col)
	}
	return strings.TrimSpace(row[p]), nil
}

// cellError wraps a coercion failure with the subject it occurred on.
func cellError(id, col string, err error) error {
	return fmt.Errorf("subject %s, column %s: %w", id, col, err)
}

func parseFloatCell(id, col, v string) (float64, error) {
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, cellError(id, col, err)
	}
	return x, nil
}

func parseFlagCell(id, col, v string) (bool, error) {
	switch v {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, cellError(id, col, fmt.Errorf("invalid 0/1 flag %q", v))
}

func parseDateCell(id, col, v string) (time.Time, error) {
	d, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, cellError(id, col, err)
	}
	return d, nil
}
