package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vecare/internal/archive"
	"vecare/internal/auth"
	"vecare/internal/branch"
	"vecare/internal/importer"
	"vecare/internal/query"
	"vecare/internal/store"
	"vecare/pkg/domain"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL        string
	RedisAddr          string
	RedisPassword      string
	SessionSecret      string
	SessionTTL         time.Duration
	AccessPasswordHash string

	Store    store.CaseStore
	Sessions store.SessionStore
	Archive  archive.Archive
}

// App wires the case store, sessions, and import pipeline together.
type App struct {
	store        store.CaseStore
	sessions     store.SessionStore
	archive      archive.Archive
	passwordHash string
}

// New constructs the application. Without an injected store it requires
// Postgres; sessions go to JWT when a secret is set, Redis otherwise.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if strings.TrimSpace(cfg.AccessPasswordHash) == "" {
		return nil, errors.New("access password hash required")
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, errors.New("database URL required (no in-memory store allowed)")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case cfg.SessionSecret != "":
			sessionStore = store.NewJWTSessionStore(cfg.SessionSecret, cfg.SessionTTL)
		case cfg.RedisAddr != "":
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			return nil, errors.New("session store required (sessionSecret or redisAddr)")
		}
	}

	return &App{
		store:        dataStore,
		sessions:     sessionStore,
		archive:      cfg.Archive,
		passwordHash: cfg.AccessPasswordHash,
	}, nil
}

// Login validates the shared access password, resolves the requested
// role, and issues a session token. The role is either ADMIN or a
// canonical branch name.
func (a *App) Login(role, password string) (domain.Principal, string, error) {
	role = strings.TrimSpace(role)
	if role == "" || password == "" {
		return domain.Principal{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, a.passwordHash) {
		return domain.Principal{}, "", ErrInvalidCredentials
	}

	var p domain.Principal
	if strings.EqualFold(role, string(domain.RoleAdmin)) {
		p = domain.Principal{Role: domain.RoleAdmin, Name: "Administrator"}
	} else {
		canonical, err := branch.Resolve(role)
		if err != nil {
			return domain.Principal{}, "", ErrInvalidCredentials
		}
		p = domain.Principal{
			Role: domain.Role(canonical),
			Name: fmt.Sprintf("Branch Manager (%s)", canonical),
		}
	}

	token, err := a.sessions.NewSession(p)
	if err != nil {
		return domain.Principal{}, "", fmt.Errorf("issue session: %w", err)
	}
	return p, token, nil
}

// PrincipalFromToken resolves a session token.
func (a *App) PrincipalFromToken(token string) (domain.Principal, bool) {
	p, ok, err := a.sessions.PrincipalByToken(token)
	if err != nil || !ok {
		return domain.Principal{}, false
	}
	return p, true
}

// Logout removes a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// ListCases returns the principal's visible cases, newest first, with
// filters applied.
func (a *App) ListCases(p domain.Principal, f query.Filters) ([]domain.Case, error) {
	cases, err := a.store.ListCases()
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return query.Apply(cases, p, f), nil
}

// Stats computes the dashboard headline counts over the filtered view.
func (a *App) Stats(p domain.Principal, f query.Filters) (query.Stats, error) {
	cases, err := a.ListCases(p, f)
	if err != nil {
		return query.Stats{}, err
	}
	return query.Summarize(cases), nil
}

// CreateCase validates and stores a single case.
func (a *App) CreateCase(p domain.Principal, c domain.Case) (domain.Case, error) {
	prepared, err := a.prepareCase(p, c)
	if err != nil {
		return domain.Case{}, err
	}
	if err := a.store.SaveCase(prepared); err != nil {
		return domain.Case{}, fmt.Errorf("save case: %w", err)
	}
	return prepared, nil
}

// BulkCreate stores a batch of cases. Rows that fail validation count
// as rejected; rows the store refuses count as failed.
func (a *App) BulkCreate(p domain.Principal, cases []domain.Case) (domain.ImportSummary, error) {
	prepared := make([]domain.Case, 0, len(cases))
	rejected := 0
	for _, c := range cases {
		pc, err := a.prepareCase(p, c)
		if err != nil {
			rejected++
			continue
		}
		prepared = append(prepared, pc)
	}
	saved, failed, err := a.store.SaveCases(prepared)
	if err != nil {
		return domain.ImportSummary{}, fmt.Errorf("save cases: %w", err)
	}
	return domain.ImportSummary{Accepted: saved, Rejected: rejected, Failed: failed}, nil
}

// prepareCase validates a new record and stamps identity and timestamps.
func (a *App) prepareCase(p domain.Principal, c domain.Case) (domain.Case, error) {
	c, err := normalizeCase(p, c)
	if err != nil {
		return domain.Case{}, err
	}
	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

// normalizeCase trims, canonicalizes the branch, and checks the
// principal's scope. Empty status defaults to Open.
func normalizeCase(p domain.Principal, c domain.Case) (domain.Case, error) {
	c.Date = strings.TrimSpace(c.Date)
	c.CaseID = strings.TrimSpace(c.CaseID)
	if c.Date == "" || c.CaseID == "" {
		return domain.Case{}, fmt.Errorf("%w: date and caseId required", ErrInvalidInput)
	}
	canonical, err := branch.Resolve(c.Branch)
	if err != nil {
		return domain.Case{}, fmt.Errorf("%w: unknown branch %q", ErrInvalidInput, c.Branch)
	}
	c.Branch = canonical
	if !p.CanSee(canonical) {
		return domain.Case{}, ErrForbidden
	}
	if c.Aging < 0 {
		c.Aging = 0
	}
	if strings.TrimSpace(c.Status) == "" {
		c.Status = domain.StatusOpen
	}
	return c, nil
}

// ImportFile decodes an uploaded sheet, normalizes its rows under the
// principal's scope, and stores what survives. The original file is
// archived when object storage is configured.
func (a *App) ImportFile(p domain.Principal, filename string, data []byte) (domain.ImportSummary, error) {
	rows, err := importer.Decode(filename, data)
	if err != nil {
		return domain.ImportSummary{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	result, err := importer.Normalize(rows, p)
	if err != nil {
		return domain.ImportSummary{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	for i := range result.Accepted {
		result.Accepted[i].ID = uuid.NewString()
		result.Accepted[i].CreatedAt = now
		result.Accepted[i].UpdatedAt = now
	}

	saved, failed, err := a.store.SaveCases(result.Accepted)
	if err != nil {
		return domain.ImportSummary{}, fmt.Errorf("save cases: %w", err)
	}

	jobID := uuid.NewString()
	a.archiveUpload(jobID, filename, data)

	mapping := make(map[string]int, len(result.Mapping))
	for field, col := range result.Mapping {
		mapping[field] = col
	}
	job := domain.ImportJob{
		ID:            jobID,
		FileName:      filepath.Base(filename),
		ActorRole:     p.Role,
		Accepted:      saved,
		Rejected:      result.Rejected,
		Failed:        failed,
		ColumnMapping: mapping,
		CreatedAt:     now,
	}
	if err := a.store.SaveImportJob(job); err != nil {
		slog.Error("save import job", "job_id", jobID, "err", err)
	}

	return domain.ImportSummary{Accepted: saved, Rejected: result.Rejected, Failed: failed}, nil
}

// archiveUpload keeps the original sheet for audit. Archive failures
// are logged, not fatal: the import itself already succeeded.
func (a *App) archiveUpload(jobID, filename string, data []byte) {
	if a.archive == nil {
		return
	}
	key := fmt.Sprintf("imports/%s/%s", jobID, filepath.Base(filename))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.archive.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/octet-stream"); err != nil {
		slog.Error("archive import file", "key", key, "err", err)
	}
}

// ListImportJobs returns past import outcomes (admin only).
func (a *App) ListImportJobs(p domain.Principal) ([]domain.ImportJob, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return a.store.ListImportJobs()
}

// UpdateCase replaces a case the principal can see.
func (a *App) UpdateCase(p domain.Principal, id string, c domain.Case) (domain.Case, error) {
	existing, ok, err := a.store.GetCase(id)
	if err != nil {
		return domain.Case{}, fmt.Errorf("get case: %w", err)
	}
	if !ok {
		return domain.Case{}, ErrNotFound
	}
	if !p.CanSee(existing.Branch) {
		return domain.Case{}, ErrForbidden
	}

	c, err = normalizeCase(p, c)
	if err != nil {
		return domain.Case{}, err
	}

	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateCase(c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Case{}, ErrNotFound
		}
		return domain.Case{}, fmt.Errorf("update case: %w", err)
	}
	return c, nil
}

// DeleteCase removes a case the principal can see.
func (a *App) DeleteCase(p domain.Principal, id string) error {
	existing, ok, err := a.store.GetCase(id)
	if err != nil {
		return fmt.Errorf("get case: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if !p.CanSee(existing.Branch) {
		return ErrForbidden
	}
	if err := a.store.DeleteCase(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete case: %w", err)
	}
	return nil
}

// DeleteAll wipes the whole collection. Admin only.
func (a *App) DeleteAll(p domain.Principal) (int, error) {
	if !p.IsAdmin() {
		return 0, ErrForbidden
	}
	n, err := a.store.DeleteAllCases()
	if err != nil {
		return 0, fmt.Errorf("delete all cases: %w", err)
	}
	slog.Info("all cases deleted", "actor", p.Role, "count", n)
	return n, nil
}

// BranchSummary aggregates the branch performance report, optionally
// restricted to a single date.
func (a *App) BranchSummary(p domain.Principal, date string) ([]query.BranchReport, error) {
	cases, err := a.ListCases(p, query.Filters{Date: date})
	if err != nil {
		return nil, err
	}
	return query.BranchSummary(cases, p), nil
}

// ExportCases streams the filtered case list as CSV.
func (a *App) ExportCases(p domain.Principal, f query.Filters, w io.Writer) error {
	cases, err := a.ListCases(p, f)
	if err != nil {
		return err
	}
	return query.WriteCases(w, cases)
}

// ExportBranchSummary streams the branch report as CSV.
func (a *App) ExportBranchSummary(p domain.Principal, date string, w io.Writer) error {
	rows, err := a.BranchSummary(p, date)
	if err != nil {
		return err
	}
	return query.WriteBranchSummary(w, rows)
}
