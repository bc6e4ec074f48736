package client

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNoResponse     = errors.New("no response from server")
	ErrDecoding       = errors.New("unexpected response body")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrServer         = errors.New("server error")

	ErrNoSession = errors.New("no session token")
	ErrNoClaims  = errors.New("session token carries no claims")
)

// ServerError is returned for every non-2xx status except 401.
// errors.Is(err, ErrServer) matches any ServerError.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: status %d: %s", e.StatusCode, e.Body)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}
