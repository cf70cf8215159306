package auth

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("DONGMUN_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	token, err := GenerateToken("member-1", "ADMIN", time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Subject != "member-1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Fatalf("expected normalized role, got %q", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	t.Setenv("DONGMUN_AUTH_SECRET", "")
	ResetSecretForTests()

	if _, err := GenerateToken("member-1", "member", time.Minute); err == nil {
		t.Fatal("expected error without configured secret")
	}
}

func TestParseAndValidateRejectsExpired(t *testing.T) {
	t.Setenv("DONGMUN_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	token, err := GenerateToken("member-1", "member", time.Millisecond)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := ParseAndValidate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAndValidateRejectsGarbage(t *testing.T) {
	t.Setenv("DONGMUN_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	for _, token := range []string{"", "   ", "a.b", strings.Repeat("x", 64)} {
		if _, err := ParseAndValidate(token); err == nil {
			t.Fatalf("expected rejection for %q", token)
		}
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("opensesame")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := VerifyPassword(hash, "opensesame"); err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}
