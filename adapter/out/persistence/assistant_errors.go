package persistence

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrStateInvalid = errors.New("state not found or expired")
)
