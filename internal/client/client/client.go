package client

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/geoposts/internal/client/models"
)

// API is the remote contract consumed by the flows.
type API interface {
	ExchangeOAuthCode(ctx context.Context, provider string, code string) (string, error)
	QueryMarkers(ctx context.Context, scope models.Scope) ([]models.PostMark, error)
	PostPreview(ctx context.Context, id int64) (*models.PostPreview, error)
	CreateDraft(ctx context.Context) (*models.Draft, error)
	PublishPost(ctx context.Context, draft models.Draft) error
	FetchRawContent(ctx context.Context, id int64, size models.ContentSize) ([]byte, error)
	ContentURL(id int64, size models.ContentSize) (*url.URL, error)
	UploadContent(ctx context.Context, postID int64, data []byte, mimeType string) error
	DeleteContent(ctx context.Context, id int64) error
}

var _ API = (*HTTPClient)(nil)
