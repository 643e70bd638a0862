package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/filmvault/filmvault/internal/model"
)

// Validator checks payloads against their `validate` tags and reports
// failures as *ValidationError keyed by JSON field name.
type Validator struct {
	v *validator.Validate
}

type optionalValue interface {
	ValidationValue() interface{}
}

// NewValidator returns a Validator that understands model.Optional fields.
func NewValidator() *Validator {
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
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if o, ok := field.Interface().(optionalValue); ok {
			return o.ValidationValue()
		}
		return nil
	},
		model.Optional[string]{},
		model.Optional[int]{},
		model.Optional[float64]{},
		model.Optional[model.Date]{},
	)
	return &Validator{v: v}
}

// Struct validates s.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

// Required fails when any of the named values is empty.
func (val *Validator) Required(fields map[string]string) error {
	var out *ValidationError
	for name, v := range fields {
		if strings.TrimSpace(v) != "" {
			continue
		}
		if out == nil {
			out = &ValidationError{Fields: map[string]string{}}
		}
		out.Fields[name] = "is required"
	}
	if out == nil {
		return nil
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// requiredPresent rejects updates that null out or empty a required column.
// A required column may be left out of the payload, but when present it must
// hold a non-zero value as on create.
func requiredPresent(cols *model.ColumnSet) error {
	fields := make(map[string]string)
	for _, c := range cols.NullRequired {
		fields[c] = "cannot be null"
	}
	for _, c := range cols.Required {
		v := reflect.ValueOf(cols.Values[c])
		if !v.IsValid() || v.IsZero() {
			fields[c] = "is required"
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
