package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/geoposts/internal/client/services"
)

// terminalBrowser completes the OAuth browser step through the terminal.
type terminalBrowser struct {
	reader *bufio.Reader
	out    io.Writer
}

var _ services.BrowserSession = (*terminalBrowser)(nil)

func (b *terminalBrowser) Authenticate(ctx context.Context, authURL *url.URL, callbackScheme string) (*url.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fmt.Fprintf(b.out, "Open this page in a browser and sign in:\n  %s\n", authURL)
	line, err := getSimpleText(b.reader, "Paste the address you were redirected to (empty line to cancel)", b.out)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: input closed", services.ErrOAuthCancelled)
		}
		return nil, err
	}
	if line == "" {
		return nil, services.ErrOAuthCancelled
	}

	cb, err := url.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("callback url: %w", err)
	}
	if callbackScheme != "" && !strings.EqualFold(cb.Scheme, callbackScheme) {
		return nil, fmt.Errorf("callback url %q: expected %s:// address", line, callbackScheme)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cb, nil
}
