package importer

import (
	"strconv"
	"strings"
	"time"
)

// CellKind discriminates the native type a cell carried in its source
// file. CSV cells are always text; spreadsheet cells may be numeric or
// native dates.
type CellKind int

const (
	KindText CellKind = iota
	KindNumber
	KindDate
)

// Cell is one value from a tabular source, keeping enough of its native
// type for field coercion to do the right thing with dates.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

// String returns a trimmed textual rendering of the cell.
func (c Cell) String() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindDate:
		return c.Date.Format("2006-01-02")
	default:
		return strings.TrimSpace(c.Text)
	}
}

func textCell(s string) Cell {
	return Cell{Kind: KindText, Text: s}
}
