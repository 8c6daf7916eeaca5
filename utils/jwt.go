package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = 72 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

func GenerateJWT(userID, email, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not set")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"exp":    time.Now().Add(TokenTTL).Unix(),
	})

	return token.SignedString([]byte(secret))
}

// ParseJWT validates an HS256 token and returns its user id and email claims.
func ParseJWT(tokenString, secret string) (userID, email string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", NewAppError(ErrAuthSessionExpired, err)
		}
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}

	userID, _ = claims["userId"].(string)
	email, _ = claims["email"].(string)
	if userID == "" {
		return "", "", fmt.Errorf("%w: userId claim missing", ErrInvalidToken)
	}
	return userID, email, nil
}
