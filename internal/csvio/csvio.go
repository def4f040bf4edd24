// Package csvio reads and writes the tabular wire format shared by the
// prediction API, the web frontend, and the input builder CLI. Readers
// tolerate a UTF-8 byte-order mark because the upstream inventory and tour
// exports are written by spreadsheet tools that emit one.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"merch-forecast/internal/domain"
)

var (
	ErrEmpty           = errors.New("csv has no header row")
	ErrNoRows          = errors.New("csv has a header but no data rows")
	ErrDuplicateColumn = errors.New("csv header has duplicate columns")
)

// Read parses CSV into a Table, stripping a leading UTF-8 BOM when present.
func Read(r io.Reader) (*domain.Table, error) {
	bomAware := transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	cr := csv.NewReader(bomAware)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	seen := make(map[string]bool, len(header))
	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = true
		columns[i] = name
	}

	table := domain.NewTable(columns)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", table.Len()+2, err)
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			row[col] = record[i]
		}
		table.Append(row)
	}

	if table.Len() == 0 {
		return nil, ErrNoRows
	}
	return table, nil
}

// Write serializes a table with its header. Missing cells write as empty
// strings so ragged rows still produce a rectangular file.
func Write(w io.Writer, table *domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			record[i] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
