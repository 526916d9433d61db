package dto

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the package-wide validator instance with the custom
// rule_label check registered.
var validate *validator.Validate

// ruleLabelPattern matches the labels the registry accepts: a dotted path of
// identifier segments, e.g. "A", "review.approve", "ship_it".
var ruleLabelPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(\.[A-Za-z_][A-Za-z0-9_-]*)*$`)

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("rule_label", func(fl validator.FieldLevel) bool {
		return ruleLabelPattern.MatchString(fl.Field().String())
	})

	// report field names from JSON tags so errors match the wire format
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateRecord runs struct validation on any dto record. Called by the
// conversion functions before a persisted record is turned back into engine
// objects, so corrupted data is rejected at load time.
func ValidateRecord(rec interface{}) error {
	return validate.Struct(rec)
}
