// Package http provides the authentication middleware and the handlers of the
// handshake, application and session endpoints.
package http

import (
	"context"

	authDomain "github.com/questionit/api/internal/auth/domain"
)

// authKey is a context key type for storing the request authorization context.
type authKey struct{}

// WithAuth stores the request authorization context.
// This is called by the authentication middlewares after the credential was checked.
func WithAuth(ctx context.Context, auth *authDomain.AuthContext) context.Context {
	return context.WithValue(ctx, authKey{}, auth)
}

// GetAuth retrieves the request authorization context.
// Returns (auth, true) if one is present, or (nil, false) if no middleware set it.
func GetAuth(ctx context.Context) (*authDomain.AuthContext, bool) {
	auth, ok := ctx.Value(authKey{}).(*authDomain.AuthContext)
	return auth, ok && auth != nil
}
