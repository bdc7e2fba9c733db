package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

type fieldErrs []fieldErr

func (m fieldErrs) Error() string {
	s := make([]string, 0, len(m))
	for _, err := range m {
		s = append(s, err.Error())
	}
	return strings.Join(s, ", ")
}

type fieldErr struct {
	Field string
	Msg   string
}

func (m fieldErr) Error() string {
	return fmt.Sprintf("%s %s", m.Field, m.Msg)
}

// ValidateStruct runs the struct's validate tags and returns an ErrValidation
// error naming every failing field.
func ValidateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}

	errs := make(fieldErrs, 0, len(valErrs))
	for _, valErr := range valErrs {
		errs = append(errs, buildFieldErr(valErr))
	}
	return &Error{Kind: ErrValidation, Msg: errs.Error()}
}

func fieldPath(f validator.FieldError) string {
	ns := f.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return f.Field()
}

func buildFieldErr(f validator.FieldError) fieldErr {
	field := fieldPath(f)
	switch f.Tag() {
	case "required", "required_unless":
		return fieldErr{Field: field, Msg: "is required"}
	case "notblank":
		return fieldErr{Field: field, Msg: "must not be blank"}
	case "gte":
		return fieldErr{Field: field, Msg: fmt.Sprintf("must be greater than or equal to %s", f.Param())}
	case "lte":
		return fieldErr{Field: field, Msg: fmt.Sprintf("must be less than or equal to %s", f.Param())}
	case "min":
		if f.Kind() == reflect.String {
			return fieldErr{Field: field, Msg: fmt.Sprintf("must be at least %s characters", f.Param())}
		}
		return fieldErr{Field: field, Msg: fmt.Sprintf("must contain at least %s entries", f.Param())}
	case "max":
		return fieldErr{Field: field, Msg: fmt.Sprintf("must be at most %s characters", f.Param())}
	case "oneof":
		return fieldErr{Field: field, Msg: fmt.Sprintf("must be one of %s", strings.ReplaceAll(f.Param(), " ", ", "))}
	case "email":
		return fieldErr{Field: field, Msg: "must be a valid email address"}
	default:
		return fieldErr{Field: field, Msg: fmt.Sprintf("invalid value tag %s", f.Tag())}
	}
}
