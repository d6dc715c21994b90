package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"vecare/pkg/domain"
)

func newRedisSessionStore(t *testing.T, ttl time.Duration) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return NewRedisSessionStore(mr.Addr(), "", ttl), mr
}

func TestRedisSessionRoundTrip(t *testing.T) {
	s, _ := newRedisSessionStore(t, time.Hour)
	p := domain.Principal{Role: "Hyderabad", Name: "Branch Manager (Hyderabad)"}
	token, err := s.NewSession(p)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	got, ok, err := s.PrincipalByToken(token)
	if err != nil || !ok {
		t.Fatalf("PrincipalByToken ok=%v err=%v", ok, err)
	}
	if got != p {
		t.Fatalf("principal = %+v, want %+v", got, p)
	}
}

func TestRedisSessionDeleteRevokes(t *testing.T) {
	s, _ := newRedisSessionStore(t, time.Hour)
	token, err := s.NewSession(domain.Principal{Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, ok, _ := s.PrincipalByToken(token); ok {
		t.Fatalf("session survives delete")
	}
}

func TestRedisSessionExpires(t *testing.T) {
	s, mr := newRedisSessionStore(t, time.Minute)
	token, err := s.NewSession(domain.Principal{Role: "Chennai"})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := s.PrincipalByToken(token); ok {
		t.Fatalf("session survives TTL")
	}
}

func TestRedisSessionUnknownToken(t *testing.T) {
	s, _ := newRedisSessionStore(t, time.Hour)
	if _, ok, err := s.PrincipalByToken("nope"); ok || err != nil {
		t.Fatalf("unknown token ok=%v err=%v", ok, err)
	}
}
