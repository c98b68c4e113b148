// internal/core/validation.go
package core

import (
	"regexp"
)

// Regular expression for valid field/slug identifiers (alphanumeric + underscore)
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Slugs additionally allow hyphens (they appear in URLs).
var slugValidationRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-_]*$`)

// IsValidIdentifier checks if a string is a valid identifier (e.g., field name).
// Applies basic format and length checks.
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}

// IsValidSlug checks if a string is usable as a project slug: lowercase
// alphanumeric, hyphens and underscores, must not start with a separator.
func IsValidSlug(slug string) bool {
	return slugValidationRegex.MatchString(slug) && len(slug) <= 64
}
