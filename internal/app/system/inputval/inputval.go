// Package inputval validates decoded request input against struct tags.
//
// Rules come from `validate:"..."` tags (go-playground/validator) and the
// human-facing field name from `label:"..."`. Field keys in the result use
// the json tag name so clients can match errors to their payload.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects every failed rule; an empty Result means the input is valid.
type Result struct {
	Errors []FieldError `json:"errors"`
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Fields maps field key to its first message.
func (r Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Add appends a field error.
func (r *Result) Add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// Merge appends other's errors, skipping fields r already reports.
func (r *Result) Merge(other Result) {
	seen := r.Fields()
	for _, e := range other.Errors {
		if _, dup := seen[e.Field]; dup {
			continue
		}
		r.Errors = append(r.Errors, e)
	}
}

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
		registerRules(v)
	})
	return v
}

// Validate runs the tag rules on s (a struct or pointer to struct).
func Validate(s any) Result {
	var res Result
	err := engine().Struct(s)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Add("_", "Input could not be validated.")
		return res
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, fe := range verrs {
		res.Add(fe.Field(), message(fe, labelFor(t, fe)))
	}
	return res
}

// labelFor walks the struct namespace to the failing field and returns its
// label tag, falling back to the Go field name.
func labelFor(root reflect.Type, fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	t := root
	for i, p := range parts[1:] {
		for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			break
		}
		if j := strings.IndexByte(p, '['); j >= 0 {
			p = p[:j]
		}
		f, ok := t.FieldByName(p)
		if !ok {
			break
		}
		if i == len(parts)-2 {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		}
		t = f.Type
	}
	return fe.StructField()
}

func message(fe validator.FieldError, label string) string {
	numeric := isNumeric(fe.Kind())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "email":
		return "A valid email address is required."
	case "max", "lte":
		if numeric {
			return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min", "gte":
		if numeric {
			return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s entries.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "objectid":
		return fmt.Sprintf("%s must be a valid ID.", label)
	case "integer":
		return fmt.Sprintf("%s must be a whole number.", label)
	case "isodate":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD).", label)
	case "authmethod":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(AllowedAuthMethodsList(), ", "))
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s.", label, fe.Param())
	}
	return fmt.Sprintf("%s is invalid.", label)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
