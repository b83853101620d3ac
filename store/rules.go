package store

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// Rule is a predicate over an attribute value plus the message reported when it fails.
type Rule struct {
	Message string
	Valid   func(value any) bool
}

// Required fails for nil, empty strings and zero times.
func Required(field string) *Rule {
	return &Rule{
		Message: fmt.Sprintf("%s is required", field),
		Valid:   isPresent,
	}
}

// ValidEmail fails unless the value is a non-empty, well-formed email address.
func ValidEmail(field string) *Rule {
	return &Rule{
		Message: fmt.Sprintf("%s is required and must be a valid email address", field),
		Valid: func(value any) bool {
			s, ok := value.(string)
			if !ok {
				return false
			}
			return validate.Var(s, "required,email") == nil
		},
	}
}

// ValidDate fails unless the value is a non-zero time or an ISO-8601 string.
func ValidDate(field string) *Rule {
	return &Rule{
		Message: fmt.Sprintf("%s is required and must be a valid Date", field),
		Valid: func(value any) bool {
			switch v := value.(type) {
			case time.Time:
				return !v.IsZero()
			case *time.Time:
				return v != nil && !v.IsZero()
			case string:
				_, err := parseDate(v)
				return err == nil
			default:
				return false
			}
		},
	}
}

func isPresent(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case time.Time:
		return !v.IsZero()
	case *time.Time:
		return v != nil && !v.IsZero()
	default:
		return true
	}
}
