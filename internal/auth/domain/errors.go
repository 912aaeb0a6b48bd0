package domain

import (
	"github.com/questionit/api/internal/errors"
	userDomain "github.com/questionit/api/internal/user/domain"
)

// Authentication and authorization errors.
var (
	// ErrInvalidExpiredToken indicates a credential, handshake token or session that is missing,
	// tampered with or past its deadline.
	ErrInvalidExpiredToken = errors.Coded(
		errors.ErrUnauthorized,
		"invalid_expired_token",
		"token is invalid or expired",
	)

	// ErrInvalidTokenRights indicates a valid credential lacking a required capability.
	ErrInvalidTokenRights = errors.Coded(
		errors.ErrForbidden,
		"invalid_token_rights",
		"token does not carry the required rights",
	)

	// ErrBannedUser indicates an administratively banned identity.
	ErrBannedUser = errors.Coded(errors.ErrForbidden, "banned_user", "user is banned")

	// ErrForbidden indicates an operation on a resource owned by someone else.
	ErrForbidden = errors.Coded(errors.ErrForbidden, "forbidden", "operation not allowed")

	// ErrUserNotFound indicates the acting or referenced user does not exist.
	ErrUserNotFound = userDomain.ErrUserNotFound

	// ErrApplicationNotFound indicates no application matches the given key or id.
	ErrApplicationNotFound = errors.Coded(
		errors.ErrNotFound,
		"application_not_found",
		"application not found",
	)

	// ErrResourceNotFound indicates a session or other resource that does not exist.
	ErrResourceNotFound = errors.Coded(errors.ErrNotFound, "resource_not_found", "resource not found")

	// ErrTokenAlreadyApproved indicates a handshake token that already has an owner.
	ErrTokenAlreadyApproved = errors.Coded(
		errors.ErrBadRequest,
		"token_already_approved",
		"token has already been approved",
	)

	// ErrTokenNotAffiliated indicates an exchange attempted before approval.
	ErrTokenNotAffiliated = errors.Coded(
		errors.ErrForbidden,
		"token_not_affiliated",
		"token has not been approved by a user",
	)

	// ErrBadRequest indicates incompatible request parameters.
	ErrBadRequest = errors.Coded(errors.ErrBadRequest, "bad_request", "malformed request")

	// ErrInvalidParameter indicates a parameter with a wrong value, such as a validator mismatch.
	ErrInvalidParameter = errors.Coded(errors.ErrBadRequest, "invalid_parameter", "invalid parameter")

	// ErrTooManyApplications indicates the per-user application quota is reached.
	ErrTooManyApplications = errors.Coded(
		errors.ErrForbidden,
		"too_many_applications",
		"application quota reached",
	)

	// ErrSameAppName indicates the owner already has an application with that name.
	ErrSameAppName = errors.Coded(
		errors.ErrForbidden,
		"same_app_name",
		"an application with this name already exists",
	)

	// ErrSessionNotFound is returned by repositories when no session matches.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "session not found")

	// ErrHandshakeTokenNotFound is returned by repositories when no handshake token matches.
	ErrHandshakeTokenNotFound = errors.Wrap(errors.ErrNotFound, "handshake token not found")
)
