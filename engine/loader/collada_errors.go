package loader

import (
	"errors"
	"fmt"
)

// Document-level errors. Any of these aborts the load and produces no scene.
var (
	ErrEmptyDocument     = errors.New("empty document")
	ErrMalformedDocument = errors.New("malformed document")
	ErrFetchFailed       = errors.New("fetch failed")
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrLoaderClosed      = errors.New("loader is closed")
)

// ElementKind names the kind of element an interpreter was decoding.
type ElementKind string

const (
	ElementAsset    ElementKind = "asset"
	ElementNode     ElementKind = "node"
	ElementGeometry ElementKind = "geometry"
	ElementMaterial ElementKind = "material"
	ElementImage    ElementKind = "image"
)

// SkippableElementError reports a malformed or incomplete element that is dropped
// from its library without aborting the surrounding parse.
type SkippableElementError struct {
	// Kind is the element kind being decoded.
	Kind ElementKind

	// ID is the element id attribute, if any.
	ID string

	// Reason describes what was missing or malformed.
	Reason string
}

func (e *SkippableElementError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("skipping %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("skipping %s %q: %s", e.Kind, e.ID, e.Reason)
}

// IsSkippable reports whether err (or any error it wraps) is a SkippableElementError.
//
// Parameters:
//   - err: the error to inspect
//
// Returns:
//   - bool: true if the element can be dropped without aborting the parse
func IsSkippable(err error) bool {
	var skip *SkippableElementError
	return errors.As(err, &skip)
}

// skipElement builds a SkippableElementError with a formatted reason.
func skipElement(kind ElementKind, id, format string, args ...any) error {
	return &SkippableElementError{Kind: kind, ID: id, Reason: fmt.Sprintf(format, args...)}
}
