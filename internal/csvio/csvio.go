// Package csvio renders translation tables as editable CSV and parses edited
// CSV back into replacement rows. Quoting follows RFC 4180 via encoding/csv;
// localized text routinely contains commas, quotes and line breaks, and those
// must survive the round trip intact.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/snowyegret23/godot-translation-file-tool/internal/translation"
)

var columns = []string{"key", "value"}

// Export writes the table as one row per entry, in table order, preceded by
// a header row.
func Export(t *translation.Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range t.Entries() {
		if err := cw.Write([]string{e.Key, e.Value}); err != nil {
			return fmt.Errorf("write row %s: %w", e.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import parses a possibly hand-edited CSV into ordered replacement rows.
// Structural problems (wrong header, wrong field count, broken quoting) are
// fatal; key validation against the original table happens later, during the
// merge, so unknown keys can be reported in aggregate.
func Import(r io.Reader) ([]translation.Replacement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Spreadsheet tools like to prepend a UTF-8 BOM on save.
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	if header[0] != columns[0] || header[1] != columns[1] {
		return nil, fmt.Errorf("csv: unexpected header %q, want %q", header, columns)
	}

	var rows []translation.Replacement
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError already carries the line number.
			return nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, translation.Replacement{Key: record[0], Value: record[1]})
	}
	return rows, nil
}
