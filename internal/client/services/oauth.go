package services

import (
	"context"
	"fmt"
	"net/url"
)

// Provider names an OAuth identity provider. The value doubles as the
// {provider} segment of the code-exchange endpoint.
type Provider string

const (
	ProviderYandex Provider = "yandex"
	ProviderGoogle Provider = "google"
	ProviderVK     Provider = "vk"
	ProviderApple  Provider = "apple"
)

const yandexAuthorizeURL = "https://oauth.yandex.ru/authorize"

// BrowserSession opens an external authorization page and blocks until the
// provider redirects back. It returns the full callback URL, or an error
// wrapping ErrOAuthCancelled when the user gives up.
type BrowserSession interface {
	Authenticate(ctx context.Context, authURL *url.URL, callbackScheme string) (*url.URL, error)
}

// OAuthConfig describes the registered client application.
type OAuthConfig struct {
	ClientID    string
	RedirectURI string
	// AuthorizeURL overrides the provider endpoint, mainly for tests.
	AuthorizeURL string
}

// authorizationURL builds the Yandex authorization page address. The user is
// always asked to confirm access again, even if it was granted before.
func (c OAuthConfig) authorizationURL() (*url.URL, error) {
	base := c.AuthorizeURL
	if base == "" {
		base = yandexAuthorizeURL
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("authorize url: %w", err)
	}

	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("force_confirm", "yes")
	u.RawQuery = q.Encode()
	return u, nil
}

// callbackScheme is the custom scheme the browser session waits for.
func (c OAuthConfig) callbackScheme() string {
	u, err := url.Parse(c.RedirectURI)
	if err != nil {
		return ""
	}
	return u.Scheme
}

func authorizationCode(callback *url.URL) (string, error) {
	if callback == nil {
		return "", ErrMissingAuthorizationCode
	}
	code := callback.Query().Get("code")
	if code == "" {
		return "", ErrMissingAuthorizationCode
	}
	return code, nil
}
