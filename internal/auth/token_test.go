package auth

import (
	"testing"

	"github.com/classpulse/support-service/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 5)

	token, expiresAt, err := tm.GenerateToken("user-1", domain.RoleTeacher)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if expiresAt.IsZero() {
		t.Fatal("expected a non-zero expiry")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != domain.RoleTeacher {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 5)
	verifier := NewTokenManager("secret-b", 5)

	token, _, err := issuer.GenerateToken("user-1", domain.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("expected verification failure with a different secret")
	}
}
