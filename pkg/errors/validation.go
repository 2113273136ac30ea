package errors

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// maxEntityIDLength bounds entity class identifiers.
const maxEntityIDLength = 256

// entityIDRegex matches dotted class names such as "shop.billing.Invoice".
// Segments may contain letters, digits, '_', '$' and '-'.
var entityIDRegex = regexp.MustCompile(`^[A-Za-z0-9_$-]+(\.[A-Za-z0-9_$-]+)*$`)

// ValidateEntityID validates a fully-qualified entity class identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - No empty segments (leading, trailing or doubled dots)
//   - Maximum length of 256 characters
func ValidateEntityID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidEntityID, "entity id cannot be empty")
	}

	if len(id) > maxEntityIDLength {
		return New(ErrCodeInvalidEntityID, "entity id too long (max %d characters)", maxEntityIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidEntityID, "entity id contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidEntityID, "entity id cannot contain whitespace: %q", id)
		}
	}

	if !entityIDRegex.MatchString(id) {
		return New(ErrCodeInvalidEntityID, "invalid entity id: %q", id)
	}

	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
// Matching is case-insensitive.
func ValidateFormat(format string, allowed ...string) error {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, f) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateResolveMode checks a parent-resolution mode name.
// The empty string selects the default and is accepted.
func ValidateResolveMode(mode string) error {
	switch mode {
	case "", "id", "short-name":
		return nil
	}
	return New(ErrCodeInvalidResolveMode, "unknown resolve mode %q (want id or short-name)", mode)
}

// ValidateCoordinate rejects NaN and infinite pointer coordinates.
func ValidateCoordinate(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidCoordinate, "%s must be a finite number", name)
	}
	return nil
}
