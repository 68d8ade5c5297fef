package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a json field name to a readable message.
type FieldErrors map[string]string

var krPhonePattern = regexp.MustCompile(`^01[016789]-?\d{3,4}-?\d{4}$`)

// New returns a validator that reports json field names and knows the krphone tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("krphone", func(fl validator.FieldLevel) bool {
		return krPhonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

// FromError converts validator output into FieldErrors. Other errors land under "_".
func FromError(err error) FieldErrors {
	out := FieldErrors{}
	if err == nil {
		return out
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fieldPath(fe)] = messageForTag(fe.Tag(), fe.Param())
		}
		return out
	}

	out["_"] = err.Error()
	return out
}

// First returns one field and message, stable for a single failing field.
func First(err error) (string, string) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fieldPath(ve[0]), messageForTag(ve[0].Tag(), ve[0].Param())
	}
	if err != nil {
		return "", err.Error()
	}
	return "", ""
}

// fieldPath drops the top-level struct name from the namespace, e.g. "contact.phone".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "krphone":
		return "must be a valid mobile number"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of: " + param
	case "datetime":
		return "must match " + param
	default:
		return "is invalid"
	}
}
