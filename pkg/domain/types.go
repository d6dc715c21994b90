package domain

import (
	"strings"
	"time"
)

// Role is either RoleAdmin or the canonical name of the branch the
// principal manages.
type Role string

const RoleAdmin Role = "ADMIN"

// Principal is the authenticated caller. It is resolved from the session
// token on every request; handlers never trust role information sent by
// the client.
type Principal struct {
	Role Role   `json:"role"`
	Name string `json:"name"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanSee reports whether the principal is entitled to rows of the given
// branch. Branch comparison is case-insensitive because stored data may
// predate canonicalization.
func (p Principal) CanSee(branch string) bool {
	if p.IsAdmin() {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(branch), string(p.Role))
}

// Recognized status literals. Status stays free text in storage; these
// are the two values the filters and reports give meaning to.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// Case is one escalation record. Date is stored as text on purpose:
// existing data carries both YYYY-MM-DD and DD-MM-YYYY and queries
// match both shapes.
type Case struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	CaseID      string    `json:"caseId"`
	Branch      string    `json:"branch"`
	Brand       string    `json:"brand,omitempty"`
	ServiceType string    `json:"serviceType,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	City        string    `json:"city,omitempty"`
	Aging       int       `json:"aging"`
	Status      string    `json:"status"`
	Remark      string    `json:"remark,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ImportSummary reports the two independent layers of loss during an
// import: rows the normalizer rejected, and rows the store refused.
type ImportSummary struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Failed   int `json:"failed"`
}

// Empty reports that the file contained no usable rows at all. The
// caller surfaces this as a notice, not an error.
func (s ImportSummary) Empty() bool {
	return s.Accepted == 0 && s.Failed == 0
}

// ImportJob is the persisted record of one bulk import.
type ImportJob struct {
	ID            string         `json:"id"`
	FileName      string         `json:"fileName"`
	ActorRole     Role           `json:"actorRole"`
	Accepted      int            `json:"accepted"`
	Rejected      int            `json:"rejected"`
	Failed        int            `json:"failed"`
	ColumnMapping map[string]int `json:"columnMapping,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}
