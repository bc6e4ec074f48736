package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/geoposts/internal/client/client"
	"github.com/dmitrijs2005/geoposts/internal/client/models"
	"github.com/dmitrijs2005/geoposts/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

// MaxTextLength is the post text limit, in characters of the NFC form.
const MaxTextLength = 130

type PostStatus int

const (
	PostInitializing PostStatus = iota
	PostReady
	PostPublishing
	PostPublished
)

func (s PostStatus) String() string {
	switch s {
	case PostInitializing:
		return "initializing"
	case PostReady:
		return "ready"
	case PostPublishing:
		return "publishing"
	case PostPublished:
		return "published"
	default:
		return fmt.Sprintf("PostStatus(%d)", int(s))
	}
}

// PostState is a snapshot of the post creation flow. Contents lists existing
// items first, then pending ones in the order they were added.
type PostState struct {
	Status     PostStatus
	DraftID    *int64
	Text       string
	Category   models.Category
	Region     models.Region
	Contents   []models.ContentItem
	CanPublish bool
	Err        error
}

// PostCreationFlow drives a single draft from creation to publish.
//
// Deleting existing content hits the server immediately. Pending images stay
// local until Publish uploads them one by one, in order. If publishing fails
// after some uploads succeeded, those images are on the server but are not
// shown again until the draft is reloaded.
type PostCreationFlow struct {
	api  client.API
	size models.ContentSize
	log  logging.Logger

	mu       sync.Mutex
	status   PostStatus
	loading  bool
	draft    *models.Draft
	text     string
	category models.Category
	region   models.Region
	existing []models.ContentItem
	pending  []models.ContentItem
	err      error

	notifier[PostState]
}

// NewPostCreationFlow prepares a flow located at region. Existing content is
// fetched at the given rendition size.
func NewPostCreationFlow(api client.API, region models.Region, size models.ContentSize, log logging.Logger) *PostCreationFlow {
	if size == "" {
		size = models.SizeSmall
	}
	return &PostCreationFlow{
		api:    api,
		size:   size,
		log:    log.With("flow", "post"),
		region: region,
	}
}

func (f *PostCreationFlow) State() PostState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

func (f *PostCreationFlow) Subscribe(fn func(PostState)) func() {
	return f.subscribe(fn)
}

// Initialize creates the draft and loads any content it already references.
// Content fetches run concurrently; a failed fetch yields an unavailable
// item instead of failing the whole load. If draft creation fails the flow
// stays in PostInitializing and Initialize may be called again.
func (f *PostCreationFlow) Initialize(ctx context.Context) error {
	f.mu.Lock()
	if f.status != PostInitializing || f.loading {
		f.mu.Unlock()
		return fmt.Errorf("initialize: %w", ErrNotReady)
	}
	f.loading = true
	f.mu.Unlock()

	d, err := f.api.CreateDraft(ctx)
	if err == nil && d.ID == nil {
		err = fmt.Errorf("%w: draft without id", client.ErrDecoding)
	}
	if err != nil {
		f.mu.Lock()
		f.loading = false
		f.err = err
		st := f.snapshot()
		f.mu.Unlock()

		f.log.Warn(ctx, "draft creation failed", "error", err)
		f.publish(st)
		return err
	}

	items := f.loadContents(ctx, d.Contents)

	f.mu.Lock()
	f.loading = false
	f.draft = d
	if d.Text != "" {
		f.text = clampText(d.Text)
	}
	if d.Category != "" {
		f.category = d.Category
	}
	if r, ok := d.Region(); ok {
		f.region = r
	}
	f.existing = items
	f.status = PostReady
	f.err = nil
	st := f.snapshot()
	f.mu.Unlock()

	f.log.Info(ctx, "draft ready", "draft_id", *d.ID, "contents", len(items))
	f.publish(st)
	return nil
}

func (f *PostCreationFlow) loadContents(ctx context.Context, ids []int64) []models.ContentItem {
	items := make([]models.ContentItem, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			item := models.ContentItem{ID: &id, Key: existingKey(id)}
			data, err := f.api.FetchRawContent(ctx, id, f.size)
			if err != nil {
				f.log.Warn(ctx, "content unavailable", "content_id", id, "error", err)
				item.Unavailable = true
			} else {
				item.Data = data
			}
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	return items
}

// SetText replaces the post text, normalized to NFC and silently truncated to
// MaxTextLength.
func (f *PostCreationFlow) SetText(text string) error {
	return f.edit(func() { f.text = clampText(text) })
}

func (f *PostCreationFlow) SetCategory(c models.Category) error {
	return f.edit(func() { f.category = c })
}

func (f *PostCreationFlow) SetRegion(r models.Region) error {
	return f.edit(func() { f.region = r })
}

// AddPendingImage queues data for upload at publish time and returns the
// item key.
func (f *PostCreationFlow) AddPendingImage(data []byte) (string, error) {
	key := uuid.NewString()
	err := f.editReady(func() error {
		f.pending = append(f.pending, models.ContentItem{Key: key, Data: slices.Clone(data)})
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// RemovePendingImage drops the pending image at index. No request is made.
func (f *PostCreationFlow) RemovePendingImage(index int) error {
	return f.editReady(func() error {
		if index < 0 || index >= len(f.pending) {
			return fmt.Errorf("pending image %d: %w", index, ErrNoSuchContent)
		}
		f.pending = slices.Delete(f.pending, index, index+1)
		return nil
	})
}

// DeleteExistingContent deletes content on the server and, only once that
// succeeds, removes it from the local list.
func (f *PostCreationFlow) DeleteExistingContent(ctx context.Context, id int64) error {
	f.mu.Lock()
	if f.status != PostReady {
		f.mu.Unlock()
		return fmt.Errorf("delete content: %w", ErrNotReady)
	}
	if f.existingIndex(id) < 0 {
		f.mu.Unlock()
		return fmt.Errorf("content %d: %w", id, ErrNoSuchContent)
	}
	f.mu.Unlock()

	err := f.api.DeleteContent(ctx, id)

	f.mu.Lock()
	if err != nil {
		f.err = err
	} else {
		if i := f.existingIndex(id); i >= 0 {
			f.existing = slices.Delete(f.existing, i, i+1)
		}
		f.err = nil
	}
	st := f.snapshot()
	f.mu.Unlock()

	if err != nil {
		f.log.Warn(ctx, "content delete failed", "content_id", id, "error", err)
	}
	f.publish(st)
	return err
}

// Validate reports why the current draft cannot be published, or nil.
func (f *PostCreationFlow) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validate()
}

// Publish uploads every pending image in order and then publishes the draft.
// The first failed upload stops the sequence: images after it stay pending,
// the publish request is not sent and the flow returns to PostReady. No
// request at all is made when validation fails.
func (f *PostCreationFlow) Publish(ctx context.Context) error {
	f.mu.Lock()
	if f.status != PostReady || f.draft == nil || f.draft.ID == nil {
		f.mu.Unlock()
		return fmt.Errorf("publish: %w", ErrNotReady)
	}
	if err := f.validate(); err != nil {
		f.err = err
		st := f.snapshot()
		f.mu.Unlock()
		f.publish(st)
		return err
	}

	f.status = PostPublishing
	id := *f.draft.ID
	pending := slices.Clone(f.pending)
	lat, lng := f.region.Latitude, f.region.Longitude
	body := models.Draft{
		ID:        &id,
		Text:      f.text,
		Category:  f.category,
		Latitude:  &lat,
		Longitude: &lng,
	}
	st := f.snapshot()
	f.mu.Unlock()
	f.publish(st)

	for i, item := range pending {
		if err := f.api.UploadContent(ctx, id, item.Data, models.MIMEJPEG); err != nil {
			f.log.Warn(ctx, "upload failed", "draft_id", id, "index", i, "error", err)
			return f.backToReady(err, func() { f.pending = f.pending[i:] })
		}
		f.log.Debug(ctx, "image uploaded", "draft_id", id, "index", i)
	}

	if err := f.api.PublishPost(ctx, body); err != nil {
		f.log.Warn(ctx, "publish failed", "draft_id", id, "error", err)
		return f.backToReady(err, func() { f.pending = nil })
	}

	f.mu.Lock()
	f.status = PostPublished
	f.draft = nil
	f.existing = nil
	f.pending = nil
	f.err = nil
	st = f.snapshot()
	f.mu.Unlock()

	f.log.Info(ctx, "post published", "draft_id", id, "uploaded", len(pending))
	f.publish(st)
	return nil
}

func (f *PostCreationFlow) backToReady(err error, adjust func()) error {
	f.mu.Lock()
	adjust()
	f.status = PostReady
	f.err = err
	st := f.snapshot()
	f.mu.Unlock()

	f.publish(st)
	return err
}

// edit applies a local field change. Fields are editable until publishing
// starts.
func (f *PostCreationFlow) edit(apply func()) error {
	f.mu.Lock()
	if f.status == PostPublishing || f.status == PostPublished {
		f.mu.Unlock()
		return fmt.Errorf("edit: %w", ErrNotReady)
	}
	apply()
	st := f.snapshot()
	f.mu.Unlock()

	f.publish(st)
	return nil
}

// editReady applies a content list change, allowed only in PostReady.
func (f *PostCreationFlow) editReady(apply func() error) error {
	f.mu.Lock()
	if f.status != PostReady {
		f.mu.Unlock()
		return fmt.Errorf("edit content: %w", ErrNotReady)
	}
	if err := apply(); err != nil {
		f.mu.Unlock()
		return err
	}
	st := f.snapshot()
	f.mu.Unlock()

	f.publish(st)
	return nil
}

// validate requires f.mu.
func (f *PostCreationFlow) validate() error {
	trimmed := strings.TrimSpace(f.text)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: text is empty", ErrValidation)
	case utf8.RuneCountInString(f.text) > MaxTextLength:
		return fmt.Errorf("%w: text longer than %d characters", ErrValidation, MaxTextLength)
	case f.category == "":
		return fmt.Errorf("%w: category not selected", ErrValidation)
	}
	return nil
}

// existingIndex requires f.mu.
func (f *PostCreationFlow) existingIndex(id int64) int {
	return slices.IndexFunc(f.existing, func(c models.ContentItem) bool {
		return c.ID != nil && *c.ID == id
	})
}

// snapshot requires f.mu.
func (f *PostCreationFlow) snapshot() PostState {
	st := PostState{
		Status:   f.status,
		Text:     f.text,
		Category: f.category,
		Region:   f.region,
		Err:      f.err,
	}
	if f.draft != nil && f.draft.ID != nil {
		id := *f.draft.ID
		st.DraftID = &id
	}
	st.Contents = make([]models.ContentItem, 0, len(f.existing)+len(f.pending))
	st.Contents = append(st.Contents, f.existing...)
	st.Contents = append(st.Contents, f.pending...)
	st.CanPublish = f.status == PostReady && f.validate() == nil
	return st
}

// clampText normalizes s to NFC and cuts it to MaxTextLength characters.
func clampText(s string) string {
	s = norm.NFC.String(s)
	if utf8.RuneCountInString(s) <= MaxTextLength {
		return s
	}
	return string([]rune(s)[:MaxTextLength])
}

func existingKey(id int64) string {
	return "content-" + strconv.FormatInt(id, 10)
}
