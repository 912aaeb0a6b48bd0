package domain

import (
	"github.com/google/uuid"

	userDomain "github.com/questionit/api/internal/user/domain"
)

// AuthContext is the per-request result of authentication. A nil User means anonymous.
type AuthContext struct {
	User    *userDomain.User
	Rights  Rights
	Session *Session
	Claims  Claims
}

// Anonymous returns a context without an acting user.
func Anonymous() *AuthContext {
	return &AuthContext{}
}

// IsAnonymous reports whether no user is acting.
func (a *AuthContext) IsAnonymous() bool {
	return a == nil || a.User == nil
}

// Credential kinds reported by AuthContext.Kind.
const (
	KindAnonymous   = "anonymous"
	KindFirstParty  = "first_party"
	KindApplication = "application"
)

// Kind names the credential behind the context.
func (a *AuthContext) Kind() string {
	switch {
	case a.IsAnonymous():
		return KindAnonymous
	case a.ApplicationID() != nil:
		return KindApplication
	default:
		return KindFirstParty
	}
}

// ApplicationID returns the application behind the credential, if any.
func (a *AuthContext) ApplicationID() *uuid.UUID {
	if a == nil || a.Session == nil {
		return nil
	}
	return a.Session.ApplicationID
}

// RequireCapabilities denies a non-anonymous context lacking any of caps. Anonymous
// contexts always pass; endpoints decide separately whether anonymous access is allowed.
func RequireCapabilities(auth *AuthContext, caps ...Rights) error {
	if auth.IsAnonymous() {
		return nil
	}
	var required Rights
	for _, c := range caps {
		required |= c
	}
	if !auth.Rights.Has(required) {
		return ErrInvalidTokenRights
	}
	return nil
}
