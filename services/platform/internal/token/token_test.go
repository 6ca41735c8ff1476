package token

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	tok, err := issuer.Issue("admin@czbank.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sub, err := issuer.Subject(tok)
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if sub != "admin@czbank.com" {
		t.Fatalf("unexpected subject %q", sub)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer, err := NewIssuer("test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	tok, err := issuer.Issue("admin@czbank.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Subject(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestForeignSecretRejected(t *testing.T) {
	a, _ := NewIssuer("secret-a", time.Minute)
	b, _ := NewIssuer("secret-b", time.Minute)
	tok, err := a.Issue("admin@czbank.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Subject(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken across secrets, got %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	issuer, _ := NewIssuer("test-secret", time.Minute)
	if _, err := issuer.Subject("not-a-jwt"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("  ", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
