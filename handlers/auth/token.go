package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long issued tokens stay valid.
var TokenTTL = 24 * time.Hour

// Claims is the token payload the portal client decodes.
type Claims struct {
	UserID   int    `json:"userId"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID *int   `json:"tenantId,omitempty"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

func secretKey() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable not set")
	}
	return []byte(secret), nil
}

// GenerateToken creates a JWT token for user authentication
// Used by: LoginHandler, seed data
func GenerateToken(user User) (string, error) {
	secret, err := secretKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies a raw token (with or without the "Bearer " prefix).
func ParseToken(raw string) (*Claims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return nil, fmt.Errorf("no token provided")
	}
	secret, err := secretKey()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// GetClaimsFromToken extracts the claims from the Authorization header
// Used by: All authenticated endpoints
func GetClaimsFromToken(r *http.Request) (*Claims, error) {
	if claims, ok := r.Context().Value(claimsKey{}).(*Claims); ok {
		return claims, nil
	}
	return ParseToken(r.Header.Get("Authorization"))
}

// GetUserIDFromToken extracts user ID from JWT token
func GetUserIDFromToken(r *http.Request) (int, error) {
	claims, err := GetClaimsFromToken(r)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// WithClaims stores verified claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}
