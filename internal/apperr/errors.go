package apperr

import "errors"

// Sentinel errors for the failure classes the API distinguishes.
// Callers wrap them with fmt.Errorf("...: %w", err) and handlers
// map them to HTTP status codes with errors.Is.
var (
	// ErrValidation marks bad or missing client input.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden marks an operation attempted by a non-owner.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorage marks a blob backend failure; the operation is aborted.
	ErrStorage = errors.New("blob storage failed")

	// ErrDerivation marks a thumbnail derivation failure. Swallowed during
	// ingestion, surfaced on explicit reprocess.
	ErrDerivation = errors.New("thumbnail derivation failed")

	// ErrDependency marks an unavailable metadata store or other backend.
	ErrDependency = errors.New("dependency unavailable")
)
