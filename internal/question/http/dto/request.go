// Package dto provides data transfer objects for the question HTTP layer.
package dto

import (
	"errors"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/questionit/api/internal/question/domain"
	customValidation "github.com/questionit/api/internal/validation"
)

// AskRequest submits a question, optionally with poll options.
type AskRequest struct {
	To          uuid.UUID `json:"to"`
	Content     string    `json:"content"`
	PollOptions []string  `json:"poll_options,omitempty"`
	Anonymous   bool      `json:"anonymous"`
}

func uniqueOptions(value interface{}) error {
	options, _ := value.([]string)
	seen := make(map[string]struct{}, len(options))
	for _, option := range options {
		if _, ok := seen[option]; ok {
			return errors.New("options must be unique")
		}
		seen[option] = struct{}{}
	}
	return nil
}

// Validate checks if the ask request is valid.
func (r *AskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.To,
			validation.NotIn(uuid.Nil).Error("is required"),
		),
		validation.Field(&r.Content,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(1, domain.MaxContentLength),
		),
		validation.Field(&r.PollOptions,
			validation.When(len(r.PollOptions) > 0,
				validation.Length(domain.MinPollOptions, domain.MaxPollOptions),
				validation.By(uniqueOptions),
				validation.Each(
					validation.Required,
					customValidation.NotBlank,
					validation.RuneLength(1, domain.MaxPollOptionLength),
				),
			),
		),
	)
}

// ToDomain converts the request to the use case input.
func (r *AskRequest) ToDomain(ip string) *domain.AskInput {
	return &domain.AskInput{
		ReceiverID:  r.To,
		Content:     r.Content,
		PollOptions: r.PollOptions,
		Anonymous:   r.Anonymous,
		IP:          ip,
	}
}
