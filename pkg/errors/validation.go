package errors

import (
	"strings"
	"unicode"
)

// MaxIDLength bounds entity identifiers accepted from callers.
const MaxIDLength = 128

// MaxSearchLength bounds the free-text search term of a filter.
const MaxSearchLength = 256

// ValidateID validates an entity identifier (company, client or project id)
// received from an outer surface such as a URL path or a CLI flag.
//
// Rules:
//   - not empty
//   - at most MaxIDLength bytes
//   - no control characters or whitespace
//   - no path separators
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "%s id contains invalid characters", kind)
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "%s id cannot contain path separators", kind)
	}
	return nil
}

// ValidateSearch validates a search term. Empty terms are allowed and mean
// "no search filter".
func ValidateSearch(term string) error {
	if len(term) > MaxSearchLength {
		return New(ErrCodeInvalidInput, "search term too long (max %d characters)", MaxSearchLength)
	}
	for _, r := range term {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "search term contains control characters")
		}
	}
	return nil
}
