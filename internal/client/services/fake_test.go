package services

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/geoposts/internal/client/client"
	"github.com/dmitrijs2005/geoposts/internal/client/models"
)

var errBoom = errors.New("boom")

type uploadCall struct {
	PostID   int64
	Data     []byte
	MIMEType string
}

// fakeAPI records calls and delegates to optional hooks. A nil hook returns
// zero values.
type fakeAPI struct {
	mu sync.Mutex

	exchangeFn func(ctx context.Context, provider, code string) (string, error)
	markersFn  func(ctx context.Context, scope models.Scope) ([]models.PostMark, error)
	previewFn  func(ctx context.Context, id int64) (*models.PostPreview, error)
	draftFn    func(ctx context.Context) (*models.Draft, error)
	publishFn  func(ctx context.Context, d models.Draft) error
	rawFn      func(ctx context.Context, id int64, size models.ContentSize) ([]byte, error)
	uploadFn   func(ctx context.Context, postID int64, data []byte, mimeType string) error
	deleteFn   func(ctx context.Context, id int64) error

	exchanges []string
	scopes    []models.Scope
	previews  []int64
	drafts    int
	published []models.Draft
	fetched   []int64
	uploads   []uploadCall
	deleted   []int64
}

var _ client.API = (*fakeAPI)(nil)

func (f *fakeAPI) ExchangeOAuthCode(ctx context.Context, provider, code string) (string, error) {
	f.mu.Lock()
	f.exchanges = append(f.exchanges, provider+":"+code)
	fn := f.exchangeFn
	f.mu.Unlock()
	if fn == nil {
		return "", nil
	}
	return fn(ctx, provider, code)
}

func (f *fakeAPI) QueryMarkers(ctx context.Context, scope models.Scope) ([]models.PostMark, error) {
	f.mu.Lock()
	f.scopes = append(f.scopes, scope)
	fn := f.markersFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, scope)
}

func (f *fakeAPI) PostPreview(ctx context.Context, id int64) (*models.PostPreview, error) {
	f.mu.Lock()
	f.previews = append(f.previews, id)
	fn := f.previewFn
	f.mu.Unlock()
	if fn == nil {
		return &models.PostPreview{}, nil
	}
	return fn(ctx, id)
}

func (f *fakeAPI) CreateDraft(ctx context.Context) (*models.Draft, error) {
	f.mu.Lock()
	f.drafts++
	fn := f.draftFn
	f.mu.Unlock()
	if fn == nil {
		return &models.Draft{ID: ptr(int64(1))}, nil
	}
	return fn(ctx)
}

func (f *fakeAPI) PublishPost(ctx context.Context, d models.Draft) error {
	f.mu.Lock()
	f.published = append(f.published, d)
	fn := f.publishFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, d)
}

func (f *fakeAPI) FetchRawContent(ctx context.Context, id int64, size models.ContentSize) ([]byte, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, id)
	fn := f.rawFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, id, size)
}

func (f *fakeAPI) ContentURL(id int64, size models.ContentSize) (*url.URL, error) {
	return url.Parse("https://example.test/contents/1?size=" + string(size))
}

func (f *fakeAPI) UploadContent(ctx context.Context, postID int64, data []byte, mimeType string) error {
	f.mu.Lock()
	f.uploads = append(f.uploads, uploadCall{PostID: postID, Data: data, MIMEType: mimeType})
	fn := f.uploadFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, postID, data, mimeType)
}

func (f *fakeAPI) DeleteContent(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	fn := f.deleteFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, id)
}

// calls is the total number of remote requests issued.
func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.exchanges) + len(f.scopes) + len(f.previews) + f.drafts +
		len(f.published) + len(f.fetched) + len(f.uploads) + len(f.deleted)
}

type fakeBrowser struct {
	gotURL    *url.URL
	gotScheme string
	callback  string
	err       error
}

func (b *fakeBrowser) Authenticate(_ context.Context, authURL *url.URL, scheme string) (*url.URL, error) {
	b.gotURL = authURL
	b.gotScheme = scheme
	if b.err != nil {
		return nil, b.err
	}
	return url.Parse(b.callback)
}

type fakeStore struct {
	saved    map[string]string
	saveErr  error
	cleared  int
	clearErr error
}

func (s *fakeStore) Save(_ context.Context, provider, token string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.saved == nil {
		s.saved = map[string]string{}
	}
	s.saved[provider] = token
	return nil
}

func (s *fakeStore) Clear(context.Context) error {
	s.cleared++
	return s.clearErr
}

func ptr[T any](v T) *T { return &v }
