package auth

import (
	"testing"
	"time"
)

func TestSessionRoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret", "atm-backend", time.Minute)
	tok, exp, err := sm.Issue("4532015112830366")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry not in the future")
	}
	card, err := sm.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if card != "4532015112830366" {
		t.Fatalf("card = %q", card)
	}
}

func TestSessionWrongSecret(t *testing.T) {
	sm := NewSessionManager("secret-a", "atm-backend", time.Minute)
	other := NewSessionManager("secret-b", "atm-backend", time.Minute)
	tok, _, err := sm.Issue("4532015112830366")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("token verified with wrong secret")
	}
}

func TestSessionExpired(t *testing.T) {
	sm := NewSessionManager("test-secret", "atm-backend", -time.Minute)
	tok, _, err := sm.Issue("4532015112830366")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sm.Parse(tok); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestVerifyPIN(t *testing.T) {
	hash, err := HashPIN("1234")
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyPIN("1234", hash); err != nil {
		t.Fatalf("correct PIN rejected: %v", err)
	}
	if err := VerifyPIN("0000", hash); err == nil {
		t.Fatal("wrong PIN accepted")
	}
}
