package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
)

// Table is a header row plus data rows, every cell a raw string.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseCSV decodes delimited text into a Table. The first record is the
// header. Ragged rows are allowed.
func ParseCSV(data []byte) (Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var table Table
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, newIngestionError(KindMalformedTabularData, "decode csv", err)
		}
		if table.Header == nil {
			table.Header = record
			continue
		}
		if isBlankRecord(record) {
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	if table.Header == nil {
		return Table{}, newIngestionError(KindMalformedTabularData, "file has no header row", nil)
	}
	return table, nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if cell != "" {
			return false
		}
	}
	return true
}

// cell returns row[i], or "" when the row is too short or i is negative.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
