package store

import (
	"testing"
	"time"

	"vecare/pkg/domain"
)

func TestJWTSessionRoundTrip(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Hour)
	p := domain.Principal{Role: domain.RoleAdmin, Name: "Administrator"}
	token, err := s.NewSession(p)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	got, ok, err := s.PrincipalByToken(token)
	if err != nil {
		t.Fatalf("PrincipalByToken: %v", err)
	}
	if !ok {
		t.Fatalf("token not accepted")
	}
	if got.Role != domain.RoleAdmin || got.Name != "Administrator" {
		t.Fatalf("principal = %+v", got)
	}
}

func TestJWTSessionRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTSessionStore("secret-a", time.Hour)
	verifier := NewJWTSessionStore("secret-b", time.Hour)
	token, err := issuer.NewSession(domain.Principal{Role: "Chennai"})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, ok, _ := verifier.PrincipalByToken(token); ok {
		t.Fatalf("token signed with another secret accepted")
	}
}

func TestJWTSessionRejectsExpired(t *testing.T) {
	s := NewJWTSessionStore("test-secret", -time.Minute)
	token, err := s.NewSession(domain.Principal{Role: "Chennai"})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, ok, _ := s.PrincipalByToken(token); ok {
		t.Fatalf("expired token accepted")
	}
}

func TestJWTSessionRejectsGarbage(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Hour)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, ok, _ := s.PrincipalByToken(token); ok {
			t.Fatalf("garbage token %q accepted", token)
		}
	}
}
