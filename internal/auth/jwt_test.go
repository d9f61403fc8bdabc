package auth

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-for-tokens"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc
}

func TestNewTokenService(t *testing.T) {
	if _, err := NewTokenService("short", 15*time.Minute); err == nil {
		t.Error("NewTokenService(short secret) error = nil, want error")
	}
	if _, err := NewTokenService(testSecret, 0); err == nil {
		t.Error("NewTokenService(zero ttl) error = nil, want error")
	}
	if _, err := NewTokenService(testSecret, -time.Hour); err == nil {
		t.Error("NewTokenService(negative ttl) error = nil, want error")
	}
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned an empty token")
	}

	userID, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Validate() userID = %q, want %q", userID, "user-123")
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateWithDuration("user-123", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	_, err = svc.Validate(token)
	if err == nil {
		t.Fatal("Validate(expired) error = nil, want error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("Validate(expired) error = %v, want mention of expiry", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	svc := newTestTokenService(t)

	other, err := NewTokenService("a-completely-different-secret", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, err := other.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := svc.Validate(token); err == nil {
		t.Error("Validate(token signed with other secret) error = nil, want error")
	}
}

func TestValidate_Garbage(t *testing.T) {
	svc := newTestTokenService(t)

	inputs := []string{
		"",
		"not-a-jwt",
		"aaaa.bbbb.cccc",
		// "alg": "none" with no signature must never pass.
		"eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ1c2VyLTEyMyJ9.",
	}
	for _, input := range inputs {
		if _, err := svc.Validate(input); err == nil {
			t.Errorf("Validate(%q) error = nil, want error", input)
		}
	}
}
