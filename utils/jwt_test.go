package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := GenerateJWT("6f1c2b7e-0000-4000-8000-000000000001", "a@example.com", "secret")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	uid, email, err := ParseJWT(tok, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != "6f1c2b7e-0000-4000-8000-000000000001" || email != "a@example.com" {
		t.Fatalf("claims = %q %q", uid, email)
	}
	if _, _, err := ParseJWT(tok, "other"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: err = %v", err)
	}
}

func TestParseJWTExpired(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u1",
		"exp":    time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := ParseJWT(tok, "secret"); !HasCode(err, ErrAuthSessionExpired) {
		t.Fatalf("err = %v, want session expired", err)
	}
}

func TestParseJWTRequiresUserID(t *testing.T) {
	t.Parallel()

	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if _, _, err := ParseJWT(tok, "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("correct horse", h) || CheckPasswordHash("wrong", h) {
		t.Fatalf("password check mismatch")
	}
}
