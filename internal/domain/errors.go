package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the metadata service is unreachable
	ErrServerOffline = errors.New("metadata service is unreachable")

	// ErrMalformedResponse indicates a response that could not be decoded
	ErrMalformedResponse = errors.New("malformed metadata response")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")
)
