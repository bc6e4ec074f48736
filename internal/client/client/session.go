package client

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the bearer token shared by every gateway call.
// It is written by the auth flow and read on each request; nothing here
// expires or clears it on its own.
type Session struct {
	mu    sync.RWMutex
	token string
}

func NewSession() *Session {
	return &Session{}
}

// Token returns the current token and whether one is set.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) Clear() {
	s.SetToken("")
}

// Claims is the subset of token claims shown to the user.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Claims decodes the token without verifying it. The signature is the
// backend's concern; the client only reads who it is logged in as.
func (s *Session) Claims() (*Claims, error) {
	token, ok := s.Token()
	if !ok {
		return nil, ErrNoSession
	}

	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return nil, ErrNoClaims
	}

	c := &Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
