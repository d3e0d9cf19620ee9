package errors

import "errors"

var (
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrSessionExpired       = errors.New("session expired")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrTransitionNotAllowed = errors.New("order transition not allowed")
	ErrTransitionRejected   = errors.New("order transition rejected")
	ErrSuperseded           = errors.New("lookup superseded by newer selection")
	ErrUpstream             = errors.New("shop api unavailable")
)
