package domain

import (
	"time"

	"github.com/google/uuid"
)

// Application is a third-party integration owned by a user. Its DefaultRights are the
// ceiling of every session it obtains through the handshake.
type Application struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Name          string
	URL           string
	Key           string //nolint:gosec // application key shown to its owner
	DefaultRights Rights
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateApplicationInput registers a new application.
type CreateApplicationInput struct {
	Name   string
	URL    string
	Rights map[string]bool
}

// UpdateApplicationInput edits an application. Rights names left out keep their current value.
type UpdateApplicationInput struct {
	Name   string
	URL    string
	Rights map[string]bool
}
