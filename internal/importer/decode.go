package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode parses an uploaded tabular payload into rows of cells. The
// container format is chosen by file extension, falling back to content
// sniffing (xlsx files are zip archives).
func Decode(filename string, data []byte) ([][]Cell, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return DecodeCSV(data)
	case ".xlsx", ".xls":
		return DecodeXLSX(data)
	}
	if bytes.HasPrefix(data, []byte("PK")) {
		return DecodeXLSX(data)
	}
	return DecodeCSV(data)
}

// DecodeCSV parses comma-separated text. Quoted fields round-trip
// embedded delimiters and doubled quotes; rows with a deviant column
// count are kept as-is and padded later during mapping.
func DecodeCSV(data []byte) ([][]Cell, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]Cell
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed individual lines are a row-level concern; the
			// normalizer counts short rows, so keep going.
			continue
		}
		row := make([]Cell, len(record))
		for i, v := range record {
			row[i] = textCell(v)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file: no rows found")
	}
	return rows, nil
}

// DecodeXLSX parses the first sheet of a binary spreadsheet. Cells are
// read raw so date cells surface as their numeric serial, which the
// date coercion converts back to text.
func DecodeXLSX(data []byte) ([][]Cell, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	rows := make([][]Cell, 0, len(raw))
	for _, rawRow := range raw {
		row := make([]Cell, len(rawRow))
		for i, v := range rawRow {
			row[i] = sheetCell(v)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty spreadsheet: no rows found")
	}
	return rows, nil
}

func sheetCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Cell{Kind: KindNumber, Number: n, Text: trimmed}
		}
	}
	return textCell(raw)
}
