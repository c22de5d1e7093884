package auth

import (
	"testing"
	"time"
)

func TestSignAndParseSession(t *testing.T) {
	token, err := SignSession("sess-42", "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	sid, err := ParseSession(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sid != "sess-42" {
		t.Fatalf("session id = %q, want sess-42", sid)
	}
}

func TestParseSession_WrongSecret(t *testing.T) {
	token, _ := SignSession("sess-42", "secret", time.Hour)
	if _, err := ParseSession(token, "other-secret"); err == nil {
		t.Fatalf("expected verification to fail with the wrong secret")
	}
}

func TestParseSession_Expired(t *testing.T) {
	token, _ := SignSession("sess-42", "secret", -time.Minute)
	if _, err := ParseSession(token, "secret"); err == nil {
		t.Fatalf("expected an expired token to be rejected")
	}
}

func TestParseSession_Garbage(t *testing.T) {
	if _, err := ParseSession("not.a.token", "secret"); err == nil {
		t.Fatalf("expected garbage to be rejected")
	}
}
