// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/questionit/api/internal/errors"
)

var (
	slugRegex        = regexp.MustCompile(`(?i)^[a-z_-][a-z0-9_-]{1,19}$`)
	blockedWordRegex = regexp.MustCompile(`^[\p{L}\p{N}_. -]{2,32}$`)
	nameRegex        = regexp.MustCompile(`^.{2,32}$`)
)

// OutOfBand is the callback value selecting the PIN flow of the application handshake.
const OutOfBand = "oob"

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Slug validates a user handle.
var Slug = validation.NewStringRuleWithError(
	func(s string) bool {
		return slugRegex.MatchString(s)
	},
	validation.NewError("validation_slug", "must be 2 to 20 letters, digits, dashes or underscores, not starting with a digit"),
)

// Name validates a display name.
var Name = validation.NewStringRuleWithError(
	func(s string) bool {
		return nameRegex.MatchString(s)
	},
	validation.NewError("validation_name", "must be 2 to 32 characters"),
)

// BlockedWord validates a single word of a user's blocked words list.
var BlockedWord = validation.NewStringRuleWithError(
	func(s string) bool {
		return blockedWordRegex.MatchString(s)
	},
	validation.NewError("validation_blocked_word", "must be 2 to 32 letters, digits, spaces, dots, dashes or underscores"),
)

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// HTTPURL validates an absolute http(s) URL.
var HTTPURL = validation.NewStringRuleWithError(
	isHTTPURL,
	validation.NewError("validation_http_url", "must be an absolute http(s) URL"),
)

// CallbackURL validates a handshake callback: either an absolute http(s) URL or "oob".
var CallbackURL = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == OutOfBand || isHTTPURL(s)
	},
	validation.NewError("validation_callback_url", "must be an absolute http(s) URL or \"oob\""),
)
