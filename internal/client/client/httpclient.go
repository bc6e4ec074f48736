package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/geoposts/internal/client/models"
	"github.com/dmitrijs2005/geoposts/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 30 * time.Second
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

// HTTPClient is the REST implementation of API. It is the single place where
// requests are built, authorized and classified.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	session    *Session
	limiter    *rate.Limiter
	metrics    *Metrics
	log        logging.Logger
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing calls at rps requests per second. Zero or
// negative values leave calls unthrottled.
func WithRateLimit(rps float64) Option {
	return func(c *HTTPClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l.With("component", "gateway") }
}

// NewHTTPClient builds a gateway rooted at baseURL. A nil session gets a
// fresh, empty one.
func NewHTTPClient(baseURL string, session *Session, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", ErrInvalidRequest, baseURL)
	}
	if session == nil {
		session = NewSession()
	}

	c := &HTTPClient{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    session,
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the session whose token is attached to every call.
func (c *HTTPClient) Session() *Session {
	return c.session
}

type request struct {
	method      string
	route       string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// Call issues a JSON request and decodes a 2xx body into out.
func (c *HTTPClient) Call(ctx context.Context, method, path string, body any, out any) error {
	return c.call(ctx, request{method: method, route: path, path: path}, body, out)
}

// CallVoid is Call without response decoding.
func (c *HTTPClient) CallVoid(ctx context.Context, method, path string, body any) error {
	return c.Call(ctx, method, path, body, nil)
}

func (c *HTTPClient) ExchangeOAuthCode(ctx context.Context, provider string, code string) (string, error) {
	var token string
	r := request{
		method: http.MethodGet,
		route:  "/auth/{provider}",
		path:   "/auth/" + url.PathEscape(provider),
		query:  url.Values{"authCode": {code}},
	}

	err := c.send(ctx, r, func(b []byte) error {
		t, err := parseToken(b)
		token = t
		return err
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (c *HTTPClient) QueryMarkers(ctx context.Context, scope models.Scope) ([]models.PostMark, error) {
	var marks []models.PostMark
	r := request{method: http.MethodPost, route: "/posts/scope", path: "/posts/scope"}
	if err := c.call(ctx, r, scope, &marks); err != nil {
		return nil, err
	}
	return marks, nil
}

func (c *HTTPClient) PostPreview(ctx context.Context, id int64) (*models.PostPreview, error) {
	var p models.PostPreview
	r := request{method: http.MethodGet, route: "/posts/previews/{id}", path: "/posts/previews/" + strconv.FormatInt(id, 10)}
	if err := c.call(ctx, r, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateDraft asks the server for a fresh draft. A draft without an id is
// useless to every later call, so it is reported as a decoding failure.
func (c *HTTPClient) CreateDraft(ctx context.Context) (*models.Draft, error) {
	var d models.Draft
	r := request{method: http.MethodPost, route: "/posts", path: "/posts"}
	if err := c.call(ctx, r, nil, &d); err != nil {
		return nil, err
	}
	if d.ID == nil {
		return nil, fmt.Errorf("%w: draft without id", ErrDecoding)
	}
	return &d, nil
}

func (c *HTTPClient) PublishPost(ctx context.Context, draft models.Draft) error {
	r := request{method: http.MethodPut, route: "/posts", path: "/posts"}
	return c.call(ctx, r, draft, nil)
}

func (c *HTTPClient) FetchRawContent(ctx context.Context, id int64, size models.ContentSize) ([]byte, error) {
	var data []byte
	r := request{
		method: http.MethodGet,
		route:  "/contents/{id}",
		path:   contentPath(id),
		query:  url.Values{"size": {string(size)}},
	}

	err := c.send(ctx, r, func(b []byte) error {
		data = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ContentURL builds the address of a content rendition without any I/O.
func (c *HTTPClient) ContentURL(id int64, size models.ContentSize) (*url.URL, error) {
	return c.resolve(contentPath(id), url.Values{"size": {string(size)}})
}

func (c *HTTPClient) UploadContent(ctx context.Context, postID int64, data []byte, mimeType string) error {
	if mimeType == "" {
		mimeType = models.MIMEJPEG
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="file"`)
	h.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("%w: multipart: %w", ErrInvalidRequest, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("%w: multipart: %w", ErrInvalidRequest, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%w: multipart: %w", ErrInvalidRequest, err)
	}

	r := request{
		method: http.MethodPost,
		route:  "/contents",
		path:   "/contents",
		query: url.Values{
			"postId": {strconv.FormatInt(postID, 10)},
			"type":   {models.ContentKindImage},
		},
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}
	return c.send(ctx, r, nil)
}

func (c *HTTPClient) DeleteContent(ctx context.Context, id int64) error {
	r := request{method: http.MethodDelete, route: "/contents/{id}", path: contentPath(id)}
	return c.send(ctx, r, nil)
}

func contentPath(id int64) string {
	return "/contents/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) call(ctx context.Context, r request, body any, out any) error {
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode body: %w", ErrInvalidRequest, err)
		}
		r.body = bytes.NewReader(payload)
		r.contentType = "application/json"
	}

	var decode func([]byte) error
	if out != nil {
		decode = func(b []byte) error { return decodeJSON(b, out) }
	}
	return c.send(ctx, r, decode)
}

// send performs r and hands a 2xx body to decode. It records one metric
// sample and one log line per call.
func (c *HTTPClient) send(ctx context.Context, r request, decode func([]byte) error) error {
	start := time.Now()

	body, outcome, err := c.roundTrip(ctx, r)
	if err == nil && decode != nil {
		if err = decode(body); err != nil {
			outcome = outcomeDecoding
		}
	}

	elapsed := time.Since(start)
	c.metrics.observe(r.method, r.route, outcome, elapsed)

	if err != nil {
		c.log.Warn(ctx, "api call failed", "method", r.method, "route", r.route, "outcome", outcome, "error", err)
		return err
	}
	c.log.Debug(ctx, "api call", "method", r.method, "route", r.route, "duration", elapsed)
	return nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, r request) ([]byte, string, error) {
	u, err := c.resolve(r.path, r.query)
	if err != nil {
		return nil, outcomeInvalid, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, outcomeNoResponse, fmt.Errorf("%w: %w", ErrNoResponse, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return nil, outcomeInvalid, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, outcomeNoResponse, fmt.Errorf("%w: %w", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, outcomeNoResponse, fmt.Errorf("%w: read body: %w", ErrNoResponse, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return payload, outcomeOK, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, outcomeUnauthorized, ErrUnauthorized
	default:
		return nil, outcomeServerError, &ServerError{StatusCode: resp.StatusCode, Body: truncate(payload)}
	}
}

// resolve joins path onto the base URL. Absolute paths pointing elsewhere
// are rejected so the token never leaves the configured host.
func (c *HTTPClient) resolve(path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("%w: path %q must be relative", ErrInvalidRequest, path)
	}

	u := c.baseURL.JoinPath(ref.Path)
	q := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u, nil
}

func decodeJSON(b []byte, out any) error {
	if len(bytes.TrimSpace(b)) == 0 {
		return fmt.Errorf("%w: empty body", ErrDecoding)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecoding, err)
	}
	return nil
}

// parseToken accepts either a bare token or a JSON string literal.
func parseToken(b []byte) (string, error) {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			s = v
		} else {
			s = strings.Trim(s, `"`)
		}
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty token", ErrDecoding)
	}
	return s, nil
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
