package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and validates the bearer tokens accepted by the
// API. Tokens are HS256; the signing method is checked exactly to
// prevent algorithm confusion.
type TokenService struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewTokenService creates a token service around the shared secret.
func NewTokenService(secret string, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// GenerateToken issues a token for the given subject.
func (s *TokenService) GenerateToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(s.tokenTTL).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a token and returns its subject.
func (s *TokenService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

// bearerAuth rejects requests that do not carry a valid bearer token.
func bearerAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				renderError(w, http.StatusUnauthorized, "unauthorized", "authorization required")
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				renderError(w, http.StatusUnauthorized, "unauthorized", "invalid authorization format")
				return
			}

			if _, err := tokens.ValidateToken(parts[1]); err != nil {
				renderError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
