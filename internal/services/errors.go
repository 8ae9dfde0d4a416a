package services

import (
	"errors"
	"fmt"

	"github.com/franciscosanchezn/foodgram-api/internal/validation"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// Error kinds every service reports. Callers match them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Entity-specific not-found errors
var (
	ErrRecipeNotFound     = fmt.Errorf("recipe %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrTagNotFound        = fmt.Errorf("tag %w", ErrNotFound)
	ErrIngredientNotFound = fmt.Errorf("ingredient %w", ErrNotFound)
	ErrClientNotFound     = fmt.Errorf("client %w", ErrNotFound)

	// The acting user has no such membership / subscription to remove
	ErrMembershipNotFound   = fmt.Errorf("membership %w", ErrNotFound)
	ErrSubscriptionNotFound = fmt.Errorf("subscription %w", ErrNotFound)
)

// ValidationError names the field and rule a submission violated
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, rule, message string) *ValidationError {
	return &ValidationError{Field: field, Rule: rule, Message: message}
}

// validate runs struct validation and reports the first failed rule
func validate(input interface{}) error {
	errs := validation.ValidateStruct(input)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return newValidationError(first.Field, first.Rule, first.Message)
}
