package query

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"vecare/pkg/domain"
)

func TestWriteCasesQuotingRoundTrip(t *testing.T) {
	cases := []domain.Case{
		{Date: "2026-01-16", CaseID: "REF-1", Branch: "Chennai", Reason: `slow, noisy`, Aging: 4, Status: "Open"},
	}
	var buf bytes.Buffer
	if err := WriteCases(&buf, cases); err != nil {
		t.Fatalf("WriteCases: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Date,ID,Branch,Brand,Reason,City,Aging,Status,Remark\n") {
		t.Fatalf("header = %q", out)
	}
	if !strings.Contains(out, `"slow, noisy"`) {
		t.Fatalf("comma value not quoted: %q", out)
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[1][4] != "slow, noisy" {
		t.Fatalf("round-trip reason = %q", records[1][4])
	}
}

func TestWriteCasesEmbeddedQuotes(t *testing.T) {
	cases := []domain.Case{
		{Date: "2026-01-16", CaseID: "REF-1", Branch: "Chennai", Remark: `said "urgent"`, Status: "Open"},
	}
	var buf bytes.Buffer
	if err := WriteCases(&buf, cases); err != nil {
		t.Fatalf("WriteCases: %v", err)
	}
	if !strings.Contains(buf.String(), `"said ""urgent"""`) {
		t.Fatalf("quotes not doubled: %q", buf.String())
	}
}

func TestWriteBranchSummary(t *testing.T) {
	rows := []BranchReport{
		{Branch: "Chennai", Total: 2, Open: 1, Closed: 1, AvgAging: "7.0", Compliance: 50},
		{Branch: "Hyderabad", AvgAging: "0.0"},
	}
	var buf bytes.Buffer
	if err := WriteBranchSummary(&buf, rows); err != nil {
		t.Fatalf("WriteBranchSummary: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Branch,Total,Open,Closed,Avg Aging,Compliance (%)" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "Chennai,2,1,1,7.0,50" {
		t.Fatalf("row = %q", lines[1])
	}
	if lines[2] != "Hyderabad,0,0,0,0.0,0" {
		t.Fatalf("zero row = %q", lines[2])
	}
}
