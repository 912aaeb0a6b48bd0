// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"regexp"

	validation "github.com/jellydator/validation"

	customValidation "github.com/questionit/api/internal/validation"
)

var applicationNameRegex = regexp.MustCompile(`^.{2,32}$`)

// RightsRequest lists capabilities by name. Absent names inherit, unknown names are ignored.
type RightsRequest map[string]bool

// RequestHandshakeRequest starts a handshake on behalf of an application.
type RequestHandshakeRequest struct {
	Key    string        `json:"key"`
	URL    string        `json:"url"`
	Rights RightsRequest `json:"rights,omitempty"`
}

// Validate checks if the handshake request is valid.
func (r *RequestHandshakeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.URL,
			validation.Required,
			validation.Length(1, 255),
			customValidation.CallbackURL,
		),
	)
}

// ApproveHandshakeRequest approves (token) or denies (deny) a pending handshake.
type ApproveHandshakeRequest struct {
	Token string `json:"token"`
	Deny  string `json:"deny"`
}

// Validate checks field lengths. Exclusivity of token and deny is enforced by the use case.
func (r *ApproveHandshakeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Length(0, 255)),
		validation.Field(&r.Deny, validation.Length(0, 255)),
	)
}

// ExchangeHandshakeRequest consumes an approved handshake.
type ExchangeHandshakeRequest struct {
	Key       string `json:"key"`
	Token     string `json:"token"`
	Validator string `json:"validator"`
}

// Validate checks if the exchange request is valid.
func (r *ExchangeHandshakeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Token, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Validator, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
	)
}

// ApplicationRequest contains the parameters for creating or editing an application.
type ApplicationRequest struct {
	Name   string        `json:"name"`
	URL    string        `json:"url"`
	Rights RightsRequest `json:"rights"`
}

// Validate checks if the application request is valid.
func (r *ApplicationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Match(applicationNameRegex),
		),
		validation.Field(&r.URL,
			validation.Length(0, 255),
			customValidation.HTTPURL,
		),
		validation.Field(&r.Rights, validation.NotNil),
	)
}
