package auth

import (
	"testing"
	"time"

	"complyhr/internal/platform/config"
)

func newTestService(accessTTL time.Duration) *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService(time.Minute)

	token, err := svc.GenerateAccessToken("user-1", "owner@acme.co.uk")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "owner@acme.co.uk" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestTokenRejections(t *testing.T) {
	svc := newTestService(-time.Minute)
	expired, _ := svc.GenerateAccessToken("user-1", "a@b.co")
	if _, err := svc.ValidateToken(expired); err == nil {
		t.Error("expected expired token to be rejected")
	}

	svc = newTestService(time.Minute)
	refresh, _ := svc.GenerateRefreshToken("user-1")
	if _, err := svc.ValidateToken(refresh); err == nil {
		t.Error("refresh token must not be accepted as an access token")
	}

	other := NewTokenService(config.JWTConfig{Secret: "other", AccessTokenTTL: time.Minute})
	forged, _ := other.GenerateAccessToken("user-1", "a@b.co")
	if _, err := svc.ValidateToken(forged); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}

func TestRefreshToken(t *testing.T) {
	svc := newTestService(time.Minute)
	refresh, err := svc.GenerateRefreshToken("user-9")
	if err != nil {
		t.Fatal(err)
	}
	userID, err := svc.ValidateRefreshToken(refresh)
	if err != nil || userID != "user-9" {
		t.Errorf("ValidateRefreshToken = %q, %v", userID, err)
	}

	access, _ := svc.GenerateAccessToken("user-9", "a@b.co")
	if _, err := svc.ValidateRefreshToken(access); err == nil {
		t.Error("access token must not be accepted as a refresh token")
	}
}

func TestPasswordHashing(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("expected short password to be rejected")
	}
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("expected wrong password to fail")
	}
}
