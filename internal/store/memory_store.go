package store

import (
	"sync"

	"vecare/pkg/domain"
)

// MemoryStore keeps cases in-process. It backs tests and local runs
// without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	cases  map[string]domain.Case
	orders []string // insertion order of case IDs
	jobs   []domain.ImportJob
	sess   map[string]domain.Principal // token -> principal
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases: make(map[string]domain.Case),
		sess:  make(map[string]domain.Principal),
	}
}

// SaveCase stores a case record and tracks insertion order.
func (m *MemoryStore) SaveCase(c domain.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(c)
}

func (m *MemoryStore) saveLocked(c domain.Case) error {
	if _, exists := m.cases[c.ID]; exists {
		return ErrDuplicateID
	}
	m.orders = append(m.orders, c.ID)
	m.cases[c.ID] = c
	return nil
}

// SaveCases stores a batch row by row; rows with a duplicate ID count
// as failed without sinking the rest.
func (m *MemoryStore) SaveCases(cases []domain.Case) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved, failed := 0, 0
	for _, c := range cases {
		if err := m.saveLocked(c); err != nil {
			failed++
			continue
		}
		saved++
	}
	return saved, failed, nil
}

// GetCase retrieves a case by ID.
func (m *MemoryStore) GetCase(id string) (domain.Case, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cases[id]
	return c, ok, nil
}

// ListCases returns cases newest first.
func (m *MemoryStore) ListCases() ([]domain.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Case, 0, len(m.orders))
	for i := len(m.orders) - 1; i >= 0; i-- {
		if c, ok := m.cases[m.orders[i]]; ok {
			res = append(res, c)
		}
	}
	return res, nil
}

// UpdateCase replaces an existing case.
func (m *MemoryStore) UpdateCase(c domain.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cases[c.ID]; !ok {
		return ErrNotFound
	}
	m.cases[c.ID] = c
	return nil
}

// DeleteCase removes a case.
func (m *MemoryStore) DeleteCase(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cases[id]; !ok {
		return ErrNotFound
	}
	delete(m.cases, id)
	filtered := m.orders[:0]
	for _, item := range m.orders {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.orders = filtered
	return nil
}

// DeleteAllCases wipes the collection.
func (m *MemoryStore) DeleteAllCases() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.cases)
	m.cases = make(map[string]domain.Case)
	m.orders = nil
	return n, nil
}

// SaveImportJob records an import job outcome.
func (m *MemoryStore) SaveImportJob(job domain.ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

// ListImportJobs returns import jobs newest first.
func (m *MemoryStore) ListImportJobs() ([]domain.ImportJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.ImportJob, 0, len(m.jobs))
	for i := len(m.jobs) - 1; i >= 0; i-- {
		res = append(res, m.jobs[i])
	}
	return res, nil
}

// NewSession creates a session token bound to a principal.
func (m *MemoryStore) NewSession(p domain.Principal) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := NewID()
	m.sess[token] = p
	return token, nil
}

// PrincipalByToken resolves a token to its principal.
func (m *MemoryStore) PrincipalByToken(token string) (domain.Principal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.sess[token]
	return p, ok, nil
}

// DeleteSession removes a token mapping.
func (m *MemoryStore) DeleteSession(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, token)
	return nil
}
