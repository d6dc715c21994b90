package query

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"vecare/internal/branch"
	"vecare/pkg/domain"
)

// BranchReport is one row of the branch performance summary.
type BranchReport struct {
	Branch     string `json:"branch"`
	Total      int    `json:"total"`
	Open       int    `json:"open"`
	Closed     int    `json:"closed"`
	TotalAging int    `json:"totalAging"`
	AvgAging   string `json:"avgAging"`
	Compliance int    `json:"compliance"`
}

// BranchSummary aggregates an already role-scoped collection into one
// bucket per canonical branch the principal is entitled to see. Rows
// whose branch does not resolve canonically are skipped. Statuses other
// than Open/Closed still count toward total and aging.
func BranchSummary(cases []domain.Case, p domain.Principal) []BranchReport {
	buckets := make(map[string]*BranchReport)
	for _, name := range branch.Names() {
		if !p.CanSee(name) {
			continue
		}
		buckets[name] = &BranchReport{Branch: name}
	}

	for _, c := range cases {
		name, err := branch.Resolve(c.Branch)
		if err != nil {
			continue
		}
		b, ok := buckets[name]
		if !ok {
			continue
		}
		b.Total++
		b.TotalAging += c.Aging
		switch {
		case strings.EqualFold(c.Status, domain.StatusOpen):
			b.Open++
		case strings.EqualFold(c.Status, domain.StatusClosed):
			b.Closed++
		}
	}

	out := make([]BranchReport, 0, len(buckets))
	for _, b := range buckets {
		b.AvgAging = "0.0"
		if b.Total > 0 {
			b.AvgAging = fmt.Sprintf("%.1f", float64(b.TotalAging)/float64(b.Total))
			b.Compliance = int(math.Round(float64(b.Closed) / float64(b.Total) * 100))
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Branch < out[j].Branch })
	return out
}

// Stats are the dashboard headline counts over a filtered view.
type Stats struct {
	Total   int `json:"total"`
	OpenNew int `json:"openNew"`
	Aging   int `json:"aging"`
	Closed  int `json:"closed"`
}

// Summarize computes the headline counts: open/new is an open case at
// most 5 days old, aging is any non-closed case older than 5 days.
func Summarize(cases []domain.Case) Stats {
	s := Stats{Total: len(cases)}
	for _, c := range cases {
		closed := strings.EqualFold(c.Status, domain.StatusClosed)
		switch {
		case closed:
			s.Closed++
		case strings.EqualFold(c.Status, domain.StatusOpen) && c.Aging <= 5:
			s.OpenNew++
		}
		if !closed && c.Aging > 5 {
			s.Aging++
		}
	}
	return s
}
