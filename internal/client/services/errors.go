package services

import "errors"

var (
	ErrOAuthCancelled           = errors.New("authorization cancelled")
	ErrMissingAuthorizationCode = errors.New("callback url has no authorization code")
	ErrNotImplemented           = errors.New("not implemented")

	// ErrValidation is wrapped with the failed check, e.g. "text is empty".
	ErrValidation = errors.New("validation failed")
	// ErrNotReady is returned for operations the current flow status forbids.
	ErrNotReady      = errors.New("operation not allowed in current state")
	ErrNoSuchContent = errors.New("no such content item")
)
