package handler

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/ILM-AI-LTD/ilm-mathAI/internal/service"
)

// isClientError reports whether the failure was caused by the request itself
// and should map to a 400 rather than a 500.
func isClientError(err error) bool {
	if err == nil {
		return false
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return true
	}

	var unsupported *service.UnsupportedImageTypeError
	if errors.As(err, &unsupported) {
		return true
	}

	return errors.Is(err, service.ErrImageRequired) ||
		errors.Is(err, service.ErrInvalidBase64) ||
		errors.Is(err, service.ErrMIMETypeRequired) ||
		errors.Is(err, errInvalidStepCount)
}

// clientErrorMessage formats a validation failure for the API envelope,
// naming the offending fields.
func clientErrorMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		missing := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			if fieldErr.Tag() == "required" {
				missing = append(missing, toSnakeCase(fieldErr.Field()))
			}
		}
		if len(missing) > 0 {
			return "Missing required fields: " + strings.Join(missing, ", ")
		}
		return "Invalid request: " + validationErrors.Error()
	}
	return err.Error()
}

// toSnakeCase maps a struct field name to its wire spelling, e.g.
// CorrectAnswer to correct_answer.
func toSnakeCase(name string) string {
	builder := strings.Builder{}
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				builder.WriteByte('_')
			}
			builder.WriteRune(unicode.ToLower(r))
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
