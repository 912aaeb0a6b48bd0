package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customError struct {
	Msg string
}

func (e customError) Error() string { return e.Msg }

func TestWrap(t *testing.T) {
	base := errors.New("base error")

	wrapped := Wrap(base, "wrapped")
	require.Error(t, wrapped)
	assert.Equal(t, "wrapped: base error", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)

	assert.NoError(t, Wrap(nil, "wrapped"))
}

func TestWrapf(t *testing.T) {
	base := errors.New("base error")

	wrapped := Wrapf(base, "status %d", 502)
	require.Error(t, wrapped)
	assert.Equal(t, "status 502: base error", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)

	assert.NoError(t, Wrapf(nil, "status %d", 502))
}

func TestIsAs(t *testing.T) {
	assert.True(t, Is(Wrap(ErrNotFound, "lookup"), ErrNotFound))
	assert.False(t, Is(ErrNotFound, ErrConflict))

	var target customError
	require.True(t, As(Wrap(customError{Msg: "custom"}, "context"), &target))
	assert.Equal(t, "custom", target.Msg)
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrInvalidInput,
		ErrBadRequest,
		ErrUnauthorized,
		ErrForbidden,
		ErrTooManyRequests,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, Is(a, b), "%v must not match %v", a, b)
			}
		}
	}
}

func TestCoded(t *testing.T) {
	err := Coded(ErrUnauthorized, "invalid_expired_token", "invalid or expired token")

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "invalid or expired token: unauthorized", err.Error())
	assert.Equal(t, "invalid_expired_token", CodeOf(err))

	wrapped := Wrap(err, "authenticate")
	assert.Equal(t, "invalid_expired_token", CodeOf(wrapped))
	assert.True(t, Is(wrapped, ErrUnauthorized))

	var coded *CodedError
	require.True(t, As(wrapped, &coded))
	assert.Equal(t, "invalid or expired token", coded.Message)

	assert.Empty(t, CodeOf(ErrNotFound))
	assert.Empty(t, CodeOf(nil))
}
