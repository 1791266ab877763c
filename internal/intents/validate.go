package intents

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks an intent's struct tags and returns a readable error
// listing every violated field.
func Validate(in *Intent) error {
	if err := validate.Struct(in); err != nil {
		return formatValidationError(in.ID, err)
	}
	return nil
}

// ValidateAll validates every intent and stops at the first failure.
func ValidateAll(list []Intent) error {
	for i := range list {
		if err := Validate(&list[i]); err != nil {
			return err
		}
	}
	return nil
}

func formatValidationError(id string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	if id == "" {
		return fmt.Errorf("invalid intent: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("invalid intent %q: %s", id, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got %q)", field, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
