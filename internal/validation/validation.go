// Package validation turns go-playground/validator failures into the
// field error list carried by validation AppErrors.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"devconnector/internal/models"

	"github.com/go-playground/validator/v10"
)

// MessageTag names the struct tag holding the user-facing failure message.
const MessageTag = "msg"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Fields validates s and returns one FieldError per failing field, in
// declaration order. It returns nil when s is valid.
func Fields(s any) []models.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{{Msg: err.Error(), Location: "body"}}
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make([]models.FieldError, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		out = append(out, models.FieldError{
			Msg:      message(t, fe),
			Param:    fe.Field(),
			Location: "body",
		})
	}
	return out
}

// Struct validates s and wraps any failures in a validation AppError.
func Struct(s any) error {
	if fields := Fields(s); len(fields) > 0 {
		return models.NewValidationError(fields...)
	}
	return nil
}

func message(t reflect.Type, fe validator.FieldError) string {
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if msg := f.Tag.Get(MessageTag); msg != "" {
				return msg
			}
		}
	}
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please include a valid email"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	default:
		return "Invalid value for " + fe.Field()
	}
}
