// Package mysql implements persistence for sessions, applications and handshake tokens on
// MySQL, storing UUIDs as BINARY(16).
package mysql

import (
	"database/sql"

	"github.com/google/uuid"

	apperrors "github.com/questionit/api/internal/errors"
)

// uuidBytes returns the BINARY(16) form of id.
func uuidBytes(id uuid.UUID) []byte {
	b, _ := id.MarshalBinary()
	return b
}

// nullUUIDBytes returns nil for a nil id so the column is stored as NULL.
func nullUUIDBytes(id *uuid.UUID) []byte {
	if id == nil {
		return nil
	}
	return uuidBytes(*id)
}

// parseUUID converts a BINARY(16) column into a UUID.
func parseUUID(b []byte, field string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := id.UnmarshalBinary(b); err != nil {
		return uuid.Nil, apperrors.Wrap(err, "failed to unmarshal "+field)
	}
	return id, nil
}

// parseNullUUID converts a nullable BINARY(16) column.
func parseNullUUID(b []byte, field string) (*uuid.UUID, error) {
	if b == nil {
		return nil, nil
	}
	id, err := parseUUID(b, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
