package catalog

import "errors"

// Error categories the presentation layer branches on. Validation errors are
// shown inline and leave state untouched; load errors leave the catalog
// empty. Neither is fatal.
var (
	ErrValidation  = errors.New("validation failed")
	ErrLoad        = errors.New("catalog load failed")
	ErrNotFound    = errors.New("record not found")
	ErrNotEditable = errors.New("catalog is read-only")
)
