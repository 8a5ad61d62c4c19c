package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	rutPattern   = regexp.MustCompile(`^\d{7,8}-[0-9kK]$`)
	namePattern  = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	phonePattern = regexp.MustCompile(`^\+569\d{8}$`)
)

// Validate is the shared validator for request structs.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their json name so responses match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("rut", matches(rutPattern))
	_ = v.RegisterValidation("personname", matches(namePattern))
	_ = v.RegisterValidation("clphone", matches(phonePattern))
	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// ValidRUT reports whether s looks like a Chilean RUT (12345678-9 or 1234567-K).
func ValidRUT(s string) bool { return rutPattern.MatchString(s) }

// FieldMessages turns validator errors into a field -> message map.
func FieldMessages(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "rut":
		return "The RUT must have the format 12345678-9."
	case "personname":
		return "Only letters and spaces are allowed."
	case "clphone":
		return "The phone must have the format +569XXXXXXXX."
	case "email":
		return "Enter a valid e-mail address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		if fe.Kind() == reflect.Int {
			return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Select a valid choice (%s).", fe.Param())
	case "nefield":
		return "The new password must differ from the current one."
	default:
		return "Invalid value."
	}
}
