// Package validator wraps go-playground/validator with the project's
// custom tags and JSON field names.
package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/salon-reservation/internal/model"
)

var validate *validator.Validate

// clockPattern accepts HH:MM or HH:MM:SS on a 24h clock.
var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := model.ParseDate(fl.Field().String())
		return err == nil
	})
}

// Validate checks s and returns field errors keyed by JSON name, or nil.
func Validate(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"body": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = "is required"
		case "min":
			out[field] = "is too short (min " + fe.Param() + ")"
		case "max":
			out[field] = "is too long (max " + fe.Param() + ")"
		case "gte":
			out[field] = "must be at least " + fe.Param()
		case "lte":
			out[field] = "must be at most " + fe.Param()
		case "gt":
			out[field] = "must be greater than " + fe.Param()
		case "email":
			out[field] = "must be an email address"
		case "clock":
			out[field] = "must be a time of day as HH:MM"
		case "role":
			out[field] = "must be admin, staff or client"
		case "date":
			out[field] = "must be a date as YYYY-MM-DD"
		default:
			out[field] = "is invalid"
		}
	}
	return out
}

// ValidClock reports whether s is a HH:MM[:SS] time of day.
func ValidClock(s string) bool { return clockPattern.MatchString(s) }
