package store

import (
	"errors"

	"vecare/pkg/domain"
)

// ErrNotFound reports that the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateID reports an insert with an ID already in the store.
var ErrDuplicateID = errors.New("duplicate record id")

// CaseStore defines persistence operations for escalation cases and
// import job records.
type CaseStore interface {
	// cases
	SaveCase(domain.Case) error
	SaveCases([]domain.Case) (saved, failed int, err error)
	GetCase(id string) (domain.Case, bool, error)
	ListCases() ([]domain.Case, error)
	UpdateCase(domain.Case) error
	DeleteCase(id string) error
	DeleteAllCases() (int, error)

	// import jobs
	SaveImportJob(domain.ImportJob) error
	ListImportJobs() ([]domain.ImportJob, error)
}

// SessionStore issues and resolves session tokens.
type SessionStore interface {
	NewSession(domain.Principal) (string, error)
	PrincipalByToken(token string) (domain.Principal, bool, error)
	DeleteSession(token string) error
}
