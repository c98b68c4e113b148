// internal/core/routes.go
package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRoute is returned when a route contains characters outside the
// allowed set. Enforced when the route is authored, not when it is served.
var ErrInvalidRoute = errors.New("invalid route")

// routeRune reports whether r may appear in a route suffix.
func routeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == '/':
		return true
	}
	return false
}

// NormalizeRoute canonicalizes a route suffix: a single leading slash,
// duplicate slashes collapsed, trailing slash stripped (except for the root).
// Character validation is a separate authoring-time concern (ValidateRoute).
func NormalizeRoute(suffix string) string {
	var b strings.Builder
	b.WriteByte('/')
	prevSlash := true
	for _, r := range suffix {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}
	route := b.String()
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	if route == "" {
		route = "/"
	}
	return route
}

// ValidateRoute checks the character set of a route suffix. Routes accept
// only [A-Za-z0-9-_/]; anything else is rejected at authoring time.
func ValidateRoute(suffix string) error {
	for _, r := range suffix {
		if !routeRune(r) {
			return fmt.Errorf("%w: character %q is not allowed (use A-Za-z0-9, '-', '_' and '/')", ErrInvalidRoute, r)
		}
	}
	if NormalizeRoute(suffix) == "/" {
		return fmt.Errorf("%w: route must not be empty", ErrInvalidRoute)
	}
	return nil
}

// FullRoute builds the fully qualified, case-sensitive route an endpoint is
// registered (and later looked up) under.
func FullRoute(projectSlug, suffix string) string {
	return "/" + projectSlug + NormalizeRoute(suffix)
}
