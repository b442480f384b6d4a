// internal/pkg/response/validation.go
package response

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FormErrorKey holds a message that belongs to no single field.
const FormErrorKey = "_form"

var fieldLabels = map[string]string{
	"Email":           "Email",
	"Password":        "Password",
	"ConfirmPassword": "Password confirmation",
	"CurrentPassword": "Current password",
	"NewPassword":     "New password",
	"FirstName":       "First name",
	"LastName":        "Last name",
	"OTP":             "Code",
	"Theme":           "Theme",
}

// FieldErrors turns a binding error into inline messages keyed by form field
// name. Errors that are not validation failures land under FormErrorKey.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{FormErrorKey: "Invalid form submission"}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := formKey(fe.Field())
		if _, exists := out[key]; exists {
			continue
		}
		out[key] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s digits", label, fe.Param())
	case "numeric":
		return label + " must contain digits only"
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "nefield":
		return "New password must differ from the current one"
	default:
		return label + " is invalid"
	}
}

// formKey maps a struct field name to its form key (ConfirmPassword ->
// confirmPassword, OTP -> otp).
func formKey(field string) string {
	if field == strings.ToUpper(field) {
		return strings.ToLower(field)
	}
	runes := []rune(field)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
