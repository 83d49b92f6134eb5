package models

import "errors"

var (
	// ErrNotFound is returned when a record does not exist in the store
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a request fails validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionNotFound is returned when no lesson session is running for a user and lesson
	ErrSessionNotFound = errors.New("lesson session not found")
)
