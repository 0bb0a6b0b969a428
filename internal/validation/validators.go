package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// canonicalUUIDLen is the length of the 8-4-4-4-12 textual form
const canonicalUUIDLen = 36

var (
	// emailPattern is matched against the start of the value only, so trailing
	// text after a well-formed address is tolerated.
	emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// IsValidUUID reports whether value is a canonical hyphenated UUID.
// Hex digits may be in either case. Braced, URN and bare-hex forms are rejected.
func IsValidUUID(value string) bool {
	if len(value) != canonicalUUIDLen {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

// IsValidEmail reports whether value looks like local@domain.tld
func IsValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// IsValidPhone reports whether value is exactly ten decimal digits
func IsValidPhone(value string) bool {
	return phonePattern.MatchString(value)
}

// NewStructValidator returns a validator/v10 instance with the "identifier"
// tag registered. Cleaned records use it on every id field.
func NewStructValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return IsValidUUID(fl.Field().String())
	})
	return v
}
