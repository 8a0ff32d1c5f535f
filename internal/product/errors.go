package product

import "errors"

var (
	// ErrQueryFailed is returned when the products query cannot be executed
	// or its result set cannot be read to the end.
	ErrQueryFailed = errors.New("product query failed")

	// ErrMappingFailed is returned when a row cannot be converted to a
	// Product (NULL in a required column, or a type mismatch).
	ErrMappingFailed = errors.New("product row mapping failed")
)
