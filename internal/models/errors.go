package models

import "errors"

// Domain errors. Services wrap them with context; the HTTP layer maps them
// to status codes with errors.Is.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrVotingClosed  = errors.New("voting is closed for this policy")
	ErrNotPolitician = errors.New("citizen has no political details")
	ErrInvalidState  = errors.New("operation not allowed in current state")
)
