package service

import "errors"

// Shared by the catalog and session stores so transports can map them to
// status codes with errors.Is.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidLayout   = errors.New("invalid layout")
	ErrInvalidAction   = errors.New("invalid action")
)
