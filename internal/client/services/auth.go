// Package services contains the client workflows ("flows") that the
// presentation layer drives: authentication, map marker querying and post
// creation. Each flow keeps plain state, reports failures through that state
// as well as its return values, and notifies subscribers on every change.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/geoposts/internal/client/client"
	"github.com/dmitrijs2005/geoposts/internal/logging"
)

type AuthStatus int

const (
	AuthIdle AuthStatus = iota
	AuthAwaitingCallback
	AuthExchangingCode
	AuthAuthenticated
	AuthFailed
)

func (s AuthStatus) String() string {
	switch s {
	case AuthIdle:
		return "idle"
	case AuthAwaitingCallback:
		return "awaiting callback"
	case AuthExchangingCode:
		return "exchanging code"
	case AuthAuthenticated:
		return "authenticated"
	case AuthFailed:
		return "failed"
	default:
		return fmt.Sprintf("AuthStatus(%d)", int(s))
	}
}

// AuthState is a snapshot of the auth flow.
type AuthState struct {
	Status AuthStatus
	Err    error
}

// TokenStore persists the session token between runs.
type TokenStore interface {
	Save(ctx context.Context, provider, token string) error
	Clear(ctx context.Context) error
}

// AuthFlow exchanges an OAuth authorization code for a backend session token.
type AuthFlow struct {
	api     client.API
	session *client.Session
	browser BrowserSession
	oauth   OAuthConfig
	store   TokenStore
	log     logging.Logger

	mu    sync.Mutex
	state AuthState

	notifier[AuthState]
}

// NewAuthFlow wires the flow. store may be nil, in which case tokens live only
// as long as the session. A session that already holds a token starts out
// authenticated.
func NewAuthFlow(api client.API, session *client.Session, browser BrowserSession, oauth OAuthConfig, store TokenStore, log logging.Logger) *AuthFlow {
	f := &AuthFlow{
		api:     api,
		session: session,
		browser: browser,
		oauth:   oauth,
		store:   store,
		log:     log.With("flow", "auth"),
	}
	if _, ok := session.Token(); ok {
		f.state.Status = AuthAuthenticated
	}
	return f
}

func (f *AuthFlow) State() AuthState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscribe registers fn for state changes and returns its cancel function.
func (f *AuthFlow) Subscribe(fn func(AuthState)) func() {
	return f.subscribe(fn)
}

// BeginLogin starts a login with the given provider. Only Yandex is
// supported; every other provider fails with ErrNotImplemented.
func (f *AuthFlow) BeginLogin(ctx context.Context, provider Provider) error {
	if provider == ProviderYandex {
		return f.BeginYandexLogin(ctx)
	}
	return f.fail(ctx, fmt.Errorf("%s login: %w", provider, ErrNotImplemented))
}

// BeginYandexLogin runs the whole login: browser authorization, code
// extraction and code exchange. It blocks until the flow is authenticated or
// has failed.
func (f *AuthFlow) BeginYandexLogin(ctx context.Context) error {
	if err := f.transition(ctx, AuthAwaitingCallback); err != nil {
		return err
	}

	authURL, err := f.oauth.authorizationURL()
	if err != nil {
		return f.fail(ctx, err)
	}

	callback, err := f.browser.Authenticate(ctx, authURL, f.oauth.callbackScheme())
	if err != nil {
		if !errors.Is(err, ErrOAuthCancelled) && errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %w", ErrOAuthCancelled, err)
		}
		return f.fail(ctx, err)
	}

	code, err := authorizationCode(callback)
	if err != nil {
		return f.fail(ctx, err)
	}

	f.set(AuthState{Status: AuthExchangingCode})

	token, err := f.api.ExchangeOAuthCode(ctx, string(ProviderYandex), code)
	if err != nil {
		return f.fail(ctx, err)
	}

	f.session.SetToken(token)
	if f.store != nil {
		if err := f.store.Save(ctx, string(ProviderYandex), token); err != nil {
			f.log.Warn(ctx, "session not persisted", "error", err)
		}
	}

	f.log.Info(ctx, "authenticated", "provider", ProviderYandex)
	f.set(AuthState{Status: AuthAuthenticated})
	return nil
}

// Logout forgets the token in memory and in the store.
func (f *AuthFlow) Logout(ctx context.Context) error {
	f.session.Clear()
	f.set(AuthState{Status: AuthIdle})

	if f.store != nil {
		if err := f.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear stored session: %w", err)
		}
	}
	f.log.Info(ctx, "logged out")
	return nil
}

// transition moves into a login, refusing to start a second one while the
// first is still waiting on the browser or the server.
func (f *AuthFlow) transition(ctx context.Context, to AuthStatus) error {
	f.mu.Lock()
	switch f.state.Status {
	case AuthAwaitingCallback, AuthExchangingCode:
		f.mu.Unlock()
		return fmt.Errorf("login already in progress: %w", ErrNotReady)
	}
	f.state = AuthState{Status: to}
	st := f.state
	f.mu.Unlock()

	f.log.Debug(ctx, "auth state", "status", to)
	f.publish(st)
	return nil
}

func (f *AuthFlow) set(st AuthState) {
	f.mu.Lock()
	f.state = st
	f.mu.Unlock()
	f.publish(st)
}

func (f *AuthFlow) fail(ctx context.Context, err error) error {
	f.log.Warn(ctx, "login failed", "error", err)
	f.set(AuthState{Status: AuthFailed, Err: err})
	return err
}
