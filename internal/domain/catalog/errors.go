package catalog

import "errors"

var (
	ErrDimensionMismatch   = errors.New("embedding dimension mismatch")
	ErrPrimaryWriteFailed  = errors.New("insert with embedding failed")
	ErrFallbackWriteFailed = errors.New("insert without embedding failed")
	ErrStoreQueryFailed    = errors.New("catalog query failed")
)
