package inputval

import (
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-date form accepted alongside RFC 3339.
const DateLayout = "2006-01-02"

func registerRules(v *validator.Validate) {
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsValidObjectID(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() == reflect.Float32 || f.Kind() == reflect.Float64 {
			x := f.Float()
			return x == math.Trunc(x)
		}
		return true
	})
	_ = v.RegisterValidation("authmethod", func(fl validator.FieldLevel) bool {
		return IsValidAuthMethod(fl.Field().String())
	})
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the instant in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// IsValidAuthMethod reports whether s names a supported auth method.
func IsValidAuthMethod(s string) bool {
	return models.IsValidAuthMethod(s)
}

// AllowedAuthMethodsList returns the auth method values in display order.
func AllowedAuthMethodsList() []string {
	out := make([]string, 0, len(models.AllAuthMethods))
	for _, m := range models.AllAuthMethods {
		out = append(out, m.Value)
	}
	return out
}
