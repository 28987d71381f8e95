package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
)
