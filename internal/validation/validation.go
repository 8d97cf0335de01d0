// Package validation checks submitted entity fields and reports field-level messages
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProductFields are the text fields of a product submission
type ProductFields struct {
	Title string `validate:"required"`
	Price string `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateProduct returns one message per invalid field, in field order. An empty result means valid.
func ValidateProduct(fields ProductFields) []string {
	fields.Title = strings.TrimSpace(fields.Title)
	fields.Price = strings.TrimSpace(fields.Price)
	return messages(validate.Struct(fields))
}

func messages(err error) []string {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " required"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
