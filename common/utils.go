package common

import (
	"strings"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// HasScheme reports whether the reference carries a scheme separator ("://").
//
// Parameters:
//   - ref: the URL or path to inspect
//
// Returns:
//   - bool: true if ref contains "://"
func HasScheme(ref string) bool {
	return strings.Contains(ref, "://")
}

// ResolvePath prefixes ref with base unless ref already carries a scheme.
// The prefix is a plain concatenation: base is expected to end with a separator.
//
// Parameters:
//   - base: the base path (e.g. "/models/")
//   - ref: the URL or relative path to resolve
//
// Returns:
//   - string: the resolved reference
func ResolvePath(base, ref string) string {
	if HasScheme(ref) {
		return ref
	}
	return base + ref
}
