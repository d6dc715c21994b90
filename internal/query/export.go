package query

import (
	"encoding/csv"
	"io"
	"strconv"

	"vecare/pkg/domain"
)

var caseExportHeader = []string{"Date", "ID", "Branch", "Brand", "Reason", "City", "Aging", "Status", "Remark"}

// WriteCases renders the case export. Fields containing the delimiter
// or quotes are wrapped in double quotes with internal quotes doubled,
// per the CSV convention.
func WriteCases(w io.Writer, cases []domain.Case) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(caseExportHeader); err != nil {
		return err
	}
	for _, c := range cases {
		record := []string{
			c.Date, c.CaseID, c.Branch, c.Brand, c.Reason,
			c.City, strconv.Itoa(c.Aging), c.Status, c.Remark,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var reportExportHeader = []string{"Branch", "Total", "Open", "Closed", "Avg Aging", "Compliance (%)"}

// WriteBranchSummary renders the branch performance export.
func WriteBranchSummary(w io.Writer, rows []BranchReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportExportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Branch,
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Open),
			strconv.Itoa(r.Closed),
			r.AvgAging,
			strconv.Itoa(r.Compliance),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
