// Package identity abstracts the external identity provider. The server
// never mints user tokens; it only verifies bearer tokens the provider
// issued and extracts the owning subject.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	// Subject is the provider-issued user identifier. It is the ownerId
	// on every session and file this user creates.
	Subject string
	Email   string
	Name    string
}

// Verifier validates a bearer identity token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// ExtractBearer extracts the token from an "Authorization: Bearer <token>"
// header value. Returns "" when the header is absent or malformed.
func ExtractBearer(authHeader string) string {
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
