package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hookd/internal/platform/config"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour})

	token, err := svc.GenerateAccessToken("ops", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != "ops" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService(config.JWTConfig{Secret: "secret-a", AccessTokenTTL: time.Hour})
	verifier := NewTokenService(config.JWTConfig{Secret: "secret-b", AccessTokenTTL: time.Hour})

	token, _ := issuer.GenerateAccessToken("ops", "admin")
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Error("token signed with another secret should not validate")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})

	claims := Claims{
		Subject: "ops",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			Issuer:    "hookd",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expired token should not validate")
	}
}

func TestValidateGarbageToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})
	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token should not validate")
	}
}
