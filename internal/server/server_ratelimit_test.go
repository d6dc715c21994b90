package server

import (
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"vecare/internal/app"
	"vecare/internal/auth"
	"vecare/internal/store"
)

func newRateLimitedServer(t *testing.T, limit int) *Server {
	t.Helper()
	hash, err := auth.HashPassword("VECARE")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	mem := store.NewMemoryStore()
	a, err := app.New(app.Config{
		AccessPasswordHash: hash,
		Store:              mem,
		Sessions:           mem,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	mr := miniredis.RunT(t)
	s, err := New(Config{
		App:                     a,
		RedisAddr:               mr.Addr(),
		LoginRateLimitPerMinute: limit,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func TestLoginRateLimited(t *testing.T) {
	s := newRateLimitedServer(t, 2)
	body := map[string]string{"role": "Chennai", "password": "wrong"}

	for i := 0; i < 2; i++ {
		rec := doJSON(t, s, http.MethodPost, "/api/auth/login", "", body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status %d", i+1, rec.Code)
		}
	}
	rec := doJSON(t, s, http.MethodPost, "/api/auth/login", "", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt: status %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
}
