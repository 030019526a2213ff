package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// RoleFromToken reads the role claim out of a bearer token without verifying
// the signature. The result is used for display decisions only; the backend
// re-checks authorization on every call.
func RoleFromToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}

	for _, key := range []string{"role", "rol"} {
		if raw, ok := claims[key]; ok {
			if role, ok := raw.(string); ok {
				return role
			}
		}
	}
	// Spring-style tokens carry authorities as a list.
	if raw, ok := claims["authorities"]; ok {
		if list, ok := raw.([]any); ok {
			for _, entry := range list {
				if role, ok := entry.(string); ok && role != "" {
					return role
				}
			}
		}
	}
	return ""
}

// TokenExpired reports whether the token's exp claim is in the past. Tokens
// without a parsable exp claim are treated as live; the backend rejects them
// if they are not.
func TokenExpired(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return true
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	return !claims.VerifyExpiresAt(nowFunc().Unix(), false)
}
