package importer

import (
	"errors"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"vecare/internal/branch"
	"vecare/pkg/domain"
)

// ErrTooFewRows is the structural failure for a file without a header
// row plus at least one data row. Nothing is persisted in that case.
var ErrTooFewRows = errors.New("file must contain a header row and at least one data row")

// Result is the outcome of normalizing one file. Accepted rows carry
// canonical branches and coerced field values; Rejected counts every
// data row that was dropped (empty, missing required fields, unknown
// branch, or outside the actor's branch). Accepted + Rejected equals
// the number of data rows in the file.
type Result struct {
	Accepted []domain.Case
	Rejected int
	Mapping  map[string]int
}

// Normalize turns decoded rows into candidate cases for the acting
// principal. Row 0 is the header row. Individual bad rows are skipped
// and counted, never fatal; only a structurally unusable file returns
// an error.
func Normalize(rows [][]Cell, actor domain.Principal) (*Result, error) {
	if len(rows) < 2 {
		return nil, ErrTooFewRows
	}
	mapping := MapHeaders(rows[0])
	res := &Result{Mapping: mapping}

	for _, row := range rows[1:] {
		c, ok := buildCase(row, mapping, actor)
		if !ok {
			res.Rejected++
			continue
		}
		res.Accepted = append(res.Accepted, c)
	}
	return res, nil
}

func buildCase(row []Cell, mapping map[string]int, actor domain.Principal) (domain.Case, bool) {
	values := make(map[string]string, len(mapping))
	hasData := false
	for field, idx := range mapping {
		var cell Cell
		if idx < len(row) {
			cell = row[idx]
		}
		v := coerce(field, cell)
		values[field] = v
		if v != "" {
			hasData = true
		}
	}
	if !hasData {
		return domain.Case{}, false
	}
	if values[FieldDate] == "" || values[FieldCaseID] == "" || values[FieldBranch] == "" {
		return domain.Case{}, false
	}

	canonical, err := branch.Resolve(values[FieldBranch])
	if err != nil {
		return domain.Case{}, false
	}
	if !actor.CanSee(canonical) {
		return domain.Case{}, false
	}

	c := domain.Case{
		Date:   values[FieldDate],
		CaseID: values[FieldCaseID],
		Branch: canonical,
		Brand:  values[FieldBrand],
		Reason: values[FieldReason],
		City:   values[FieldCity],
		Aging:  parseAging(values[FieldAging]),
		Status: values[FieldStatus],
		Remark: values[FieldRemark],
	}
	if c.Status == "" {
		c.Status = domain.StatusOpen
	}
	return c, true
}

// coerce applies field-specific conversion. Dates keep their text form
// unless the source cell was a native date or a spreadsheet serial, in
// which case they are formatted as YYYY-MM-DD.
func coerce(field string, cell Cell) string {
	if field != FieldDate {
		return cell.String()
	}
	switch cell.Kind {
	case KindDate:
		return cell.Date.Format("2006-01-02")
	case KindNumber:
		t, err := excelize.ExcelDateToTime(cell.Number, false)
		if err != nil {
			return cell.String()
		}
		return t.Format("2006-01-02")
	default:
		return strings.TrimSpace(cell.Text)
	}
}

func parseAging(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
