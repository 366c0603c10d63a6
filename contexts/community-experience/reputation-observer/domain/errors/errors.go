package errors

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid reputation input")
	ErrProfileNotFound = errors.New("profile not found")
)
