package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrEmptyInput      = errors.New("empty input text")
	ErrInputTooLarge   = errors.New("input text exceeds maximum length")
	ErrProviderFailed  = errors.New("provider call failed")
	ErrProviderTimeout = errors.New("provider call timed out")
	ErrNotFound        = errors.New("not found")
	ErrSerialization   = errors.New("cannot serialize output")
	ErrInvalidConfig   = errors.New("invalid configuration")
)
