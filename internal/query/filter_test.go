package query

import (
	"testing"

	"vecare/pkg/domain"
)

var (
	adminP   = domain.Principal{Role: domain.RoleAdmin, Name: "Administrator"}
	chennaiP = domain.Principal{Role: "Chennai", Name: "Branch Manager (Chennai)"}
)

func sampleCases() []domain.Case {
	return []domain.Case{
		{ID: "1", Date: "16-01-2026", CaseID: "REF-1", Branch: "Chennai", Aging: 4, Status: "Open", Reason: "noisy fan"},
		{ID: "2", Date: "2026-01-20", CaseID: "REF-2", Branch: "Bangalore", Aging: 8, Status: "Open"},
		{ID: "3", Date: "2026-02-01", CaseID: "REF-3", Branch: "chennai", Aging: 12, Status: "Closed"},
		{ID: "4", Date: "2025-12-30", CaseID: "REF-4", Branch: "Hyderabad", Aging: 0, Status: "In Progress"},
	}
}

func ids(cases []domain.Case) []string {
	out := make([]string, 0, len(cases))
	for _, c := range cases {
		out = append(out, c.ID)
	}
	return out
}

func TestApplyRoleScope(t *testing.T) {
	got := Apply(sampleCases(), chennaiP, Filters{})
	if len(got) != 2 {
		t.Fatalf("scoped rows = %v, want 2", ids(got))
	}
	for _, c := range got {
		if !chennaiP.CanSee(c.Branch) {
			t.Fatalf("row %s outside principal branch: %q", c.ID, c.Branch)
		}
	}
}

func TestApplyRoleScopeNotWidenedByBranchFilter(t *testing.T) {
	got := Apply(sampleCases(), chennaiP, Filters{Branch: "Bangalore"})
	if len(got) != 0 {
		t.Fatalf("branch filter widened role scope: %v", ids(got))
	}
}

func TestApplySearchAnyField(t *testing.T) {
	got := Apply(sampleCases(), adminP, Filters{Search: "NOISY"})
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("search hit %v, want [1]", ids(got))
	}
	// numeric fields are searchable through their string form
	got = Apply(sampleCases(), adminP, Filters{Search: "12"})
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("aging search hit %v, want [3]", ids(got))
	}
}

func TestApplyStatusAndBranch(t *testing.T) {
	got := Apply(sampleCases(), adminP, Filters{Status: "closed"})
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("status filter hit %v, want [3]", ids(got))
	}
	got = Apply(sampleCases(), adminP, Filters{Branch: " CHENNAI "})
	if len(got) != 2 {
		t.Fatalf("branch filter hit %v, want rows 1 and 3", ids(got))
	}
}

func TestMatchesDateDualFormat(t *testing.T) {
	if !MatchesDate("16-01-2026", "2026-01-16") {
		t.Fatalf("DD-MM-YYYY row should match its YYYY-MM-DD rendering")
	}
	if !MatchesDate("16-01-2026", "16") {
		t.Fatalf("partial fragment should match")
	}
	if !MatchesDate("2026-01-16", "2026") {
		t.Fatalf("partial year should match ISO-stored row")
	}
	if MatchesDate("16-01-2026", "1999") {
		t.Fatalf("unrelated value should not match")
	}
	if MatchesDate("", "2026") {
		t.Fatalf("empty stored date should never match")
	}
}

func TestApplyAgingBuckets(t *testing.T) {
	cases := map[string][]string{
		"0-5":  {"1", "4"},
		"6-10": {"2"},
		"11+":  {"3"},
		"":     {"1", "2", "3", "4"},
	}
	for bucket, want := range cases {
		got := ids(Apply(sampleCases(), adminP, Filters{Aging: bucket}))
		if len(got) != len(want) {
			t.Fatalf("bucket %q hit %v, want %v", bucket, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("bucket %q hit %v, want %v", bucket, got, want)
			}
		}
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	got := ids(Apply(sampleCases(), adminP, Filters{}))
	want := []string{"1", "2", "3", "4"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
