// Package auth verifies caller credentials. The rest of the service only
// sees an Identity.
package auth

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid token")

type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Verifier maps an opaque bearer token to the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
