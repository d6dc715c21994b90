package query

import (
	"strconv"
	"strings"

	"vecare/pkg/domain"
)

// Filters are the user-supplied predicates. All of them combine with
// logical AND; empty values match everything. Aging takes one of
// "", "0-5", "6-10", "11+".
type Filters struct {
	Search string
	Status string
	Branch string
	Date   string
	Aging  string
}

// Apply returns the subset of cases the principal may see that matches
// every filter, preserving input order. Role scope is applied before
// user filters and cannot be widened by the branch filter.
func Apply(cases []domain.Case, p domain.Principal, f Filters) []domain.Case {
	out := make([]domain.Case, 0, len(cases))
	for _, c := range cases {
		if !p.CanSee(c.Branch) {
			continue
		}
		if !matches(c, f) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matches(c domain.Case, f Filters) bool {
	if f.Search != "" && !matchesSearch(c, f.Search) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(c.Status, f.Status) {
		return false
	}
	if b := strings.TrimSpace(f.Branch); b != "" && !strings.EqualFold(strings.TrimSpace(c.Branch), b) {
		return false
	}
	if f.Date != "" && !MatchesDate(c.Date, f.Date) {
		return false
	}
	return matchesAging(c.Aging, f.Aging)
}

// matchesSearch does a case-insensitive substring match against the
// string form of every field on the row, with no field weighting.
func matchesSearch(c domain.Case, term string) bool {
	term = strings.ToLower(term)
	fields := []string{
		c.Date, c.CaseID, c.Branch, c.Brand, c.ServiceType,
		c.Reason, c.City, strconv.Itoa(c.Aging), c.Status, c.Remark,
	}
	for _, v := range fields {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// MatchesDate matches the filter value as a substring of the stored
// date text. Stored dates in DD-MM-YYYY form are additionally matched
// through their YYYY-MM-DD rendering, so a user can type either
// convention (or a fragment of one) and hit rows stored in the other.
func MatchesDate(stored, filter string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(filter))
	if strings.Contains(strings.ToLower(stored), needle) {
		return true
	}
	parts := strings.Split(stored, "-")
	if len(parts) == 3 && len(parts[0]) != 4 {
		converted := parts[2] + "-" + parts[1] + "-" + parts[0]
		return strings.Contains(strings.ToLower(converted), needle)
	}
	return false
}

func matchesAging(aging int, bucket string) bool {
	switch bucket {
	case "0-5":
		return aging <= 5
	case "6-10":
		return aging >= 6 && aging <= 10
	case "11+":
		return aging > 10
	default:
		return true
	}
}
