package repository

import "errors"

var (
	// ErrSessionNotFound indicates no session is stored under the given id
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSession indicates a session without id or machine
	ErrInvalidSession = errors.New("invalid session")
)
