package utils

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 7, "host@example.com", "STAFF", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if time.Until(tok.Exp) <= 0 {
		t.Fatal("token already expired")
	}

	email, role, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if email != "host@example.com" || role != "STAFF" {
		t.Errorf("claims = (%q, %q)", email, role)
	}
}

func TestParseAccessTokenRejectsForeignSignature(t *testing.T) {
	tok, err := NewAccessToken("secret-a", 7, "host@example.com", "STAFF", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, _, err := ParseAccessToken("secret-b", tok.Token); err != ErrBadToken {
		t.Fatalf("err = %v, want ErrBadToken", err)
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	if _, _, err := ParseAccessToken("secret", "not.a.jwt"); err != ErrBadToken {
		t.Fatalf("err = %v, want ErrBadToken", err)
	}
}

func TestRefreshTokenHashIsStable(t *testing.T) {
	rt, err := NewRefreshToken(30)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Errorf("raw length = %d, want 96 hex chars", len(rt.Raw))
	}
	if HashRefreshRaw(rt.Raw) != HashRefreshRaw(rt.Raw) {
		t.Error("hash not deterministic")
	}
	if HashRefreshRaw(rt.Raw) == rt.Raw {
		t.Error("hash equals raw token")
	}
}
