package store

import (
	"errors"
	"testing"
	"time"

	"vecare/pkg/domain"
)

func newCase(id, branch string) domain.Case {
	return domain.Case{
		ID:        id,
		CaseID:    "REF-" + id,
		Branch:    branch,
		Status:    domain.StatusOpen,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	m := NewMemoryStore()
	for _, id := range []string{"a", "b", "c"} {
		if err := m.SaveCase(newCase(id, "Chennai")); err != nil {
			t.Fatalf("SaveCase(%s): %v", id, err)
		}
	}
	cases, err := m.ListCases()
	if err != nil {
		t.Fatalf("ListCases: %v", err)
	}
	if len(cases) != 3 || cases[0].ID != "c" || cases[2].ID != "a" {
		t.Fatalf("unexpected order: %+v", cases)
	}
}

func TestMemoryStoreSaveCasesCountsDuplicates(t *testing.T) {
	m := NewMemoryStore()
	if err := m.SaveCase(newCase("dup", "Chennai")); err != nil {
		t.Fatalf("SaveCase: %v", err)
	}
	saved, failed, err := m.SaveCases([]domain.Case{
		newCase("x", "Chennai"),
		newCase("dup", "Chennai"),
		newCase("y", "Chennai"),
	})
	if err != nil {
		t.Fatalf("SaveCases: %v", err)
	}
	if saved != 2 || failed != 1 {
		t.Fatalf("saved=%d failed=%d, want 2/1", saved, failed)
	}
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	m := NewMemoryStore()
	err := m.UpdateCase(newCase("ghost", "Chennai"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateCase err = %v, want ErrNotFound", err)
	}
	if err := m.DeleteCase("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteCase err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreUpdateAndDelete(t *testing.T) {
	m := NewMemoryStore()
	c := newCase("u1", "Chennai")
	if err := m.SaveCase(c); err != nil {
		t.Fatalf("SaveCase: %v", err)
	}
	c.Status = domain.StatusClosed
	if err := m.UpdateCase(c); err != nil {
		t.Fatalf("UpdateCase: %v", err)
	}
	got, ok, err := m.GetCase("u1")
	if err != nil || !ok {
		t.Fatalf("GetCase ok=%v err=%v", ok, err)
	}
	if got.Status != domain.StatusClosed {
		t.Fatalf("status = %q after update", got.Status)
	}
	if err := m.DeleteCase("u1"); err != nil {
		t.Fatalf("DeleteCase: %v", err)
	}
	if _, ok, _ := m.GetCase("u1"); ok {
		t.Fatalf("case still present after delete")
	}
}

func TestMemoryStoreDeleteAll(t *testing.T) {
	m := NewMemoryStore()
	m.SaveCase(newCase("a", "Chennai"))
	m.SaveCase(newCase("b", "Bangalore"))
	n, err := m.DeleteAllCases()
	if err != nil {
		t.Fatalf("DeleteAllCases: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted = %d, want 2", n)
	}
	cases, _ := m.ListCases()
	if len(cases) != 0 {
		t.Fatalf("cases remain after delete all: %+v", cases)
	}
}

func TestMemoryStoreImportJobs(t *testing.T) {
	m := NewMemoryStore()
	first := domain.ImportJob{ID: "j1", FileName: "a.csv", Accepted: 3, CreatedAt: time.Now().UTC()}
	second := domain.ImportJob{ID: "j2", FileName: "b.xlsx", Accepted: 1, Rejected: 2, CreatedAt: time.Now().UTC()}
	if err := m.SaveImportJob(first); err != nil {
		t.Fatalf("SaveImportJob: %v", err)
	}
	if err := m.SaveImportJob(second); err != nil {
		t.Fatalf("SaveImportJob: %v", err)
	}
	jobs, err := m.ListImportJobs()
	if err != nil {
		t.Fatalf("ListImportJobs: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != "j2" {
		t.Fatalf("jobs = %+v, want j2 first", jobs)
	}
}

func TestMemoryStoreSessions(t *testing.T) {
	m := NewMemoryStore()
	p := domain.Principal{Role: "Chennai", Name: "Branch Manager (Chennai)"}
	token, err := m.NewSession(p)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	got, ok, err := m.PrincipalByToken(token)
	if err != nil || !ok {
		t.Fatalf("PrincipalByToken ok=%v err=%v", ok, err)
	}
	if got != p {
		t.Fatalf("principal = %+v, want %+v", got, p)
	}
	if err := m.DeleteSession(token); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, ok, _ := m.PrincipalByToken(token); ok {
		t.Fatalf("session survives delete")
	}
}
