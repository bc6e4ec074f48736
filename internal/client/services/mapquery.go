package services

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/geoposts/internal/client/client"
	"github.com/dmitrijs2005/geoposts/internal/client/models"
	"github.com/dmitrijs2005/geoposts/internal/logging"
)

// DefaultRadiusMeters is the marker search radius around the region center.
const DefaultRadiusMeters = 5000

// MapState is a snapshot of the map flow.
type MapState struct {
	Region         models.Region
	Categories     []models.Category
	Markers        []models.Marker
	Preview        *models.PostPreview
	PreviewLoading bool
	Err            error
}

// MapQueryFlow keeps the viewed region, the category filter and the markers
// found for them, plus the preview of a single selected post.
//
// Every marker and preview request is tagged with a sequence number; a
// response that arrives after a newer request has started is dropped.
type MapQueryFlow struct {
	api    client.API
	radius float64
	log    logging.Logger

	mu             sync.Mutex
	region         models.Region
	active         map[models.Category]struct{}
	markers        []models.Marker
	preview        *models.PostPreview
	previewLoading bool
	err            error
	markerSeq      uint64
	previewSeq     uint64

	wg sync.WaitGroup

	notifier[MapState]
}

// NewMapQueryFlow starts at region with no category filter. A non-positive
// radius falls back to DefaultRadiusMeters.
func NewMapQueryFlow(api client.API, region models.Region, radiusMeters float64, log logging.Logger) *MapQueryFlow {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}
	return &MapQueryFlow{
		api:     api,
		radius:  radiusMeters,
		log:     log.With("flow", "map"),
		region:  region,
		active:  make(map[models.Category]struct{}),
		markers: []models.Marker{},
	}
}

func (f *MapQueryFlow) State() MapState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

func (f *MapQueryFlow) Subscribe(fn func(MapState)) func() {
	return f.subscribe(fn)
}

// SetRegion records the map center without querying.
func (f *MapQueryFlow) SetRegion(r models.Region) {
	f.mu.Lock()
	f.region = r
	st := f.snapshot()
	f.mu.Unlock()
	f.publish(st)
}

// MoveRegion records the map center and refreshes markers in the
// background. ctx must outlive the refresh.
func (f *MapQueryFlow) MoveRegion(ctx context.Context, r models.Region) {
	f.SetRegion(r)
	f.refreshAsync(ctx)
}

// ToggleCategory flips c in the active filter and refreshes markers in the
// background. ctx must outlive the refresh.
func (f *MapQueryFlow) ToggleCategory(ctx context.Context, c models.Category) {
	f.mu.Lock()
	if _, ok := f.active[c]; ok {
		delete(f.active, c)
	} else {
		f.active[c] = struct{}{}
	}
	st := f.snapshot()
	f.mu.Unlock()

	f.publish(st)
	f.refreshAsync(ctx)
}

// Wait blocks until every background refresh has finished.
func (f *MapQueryFlow) Wait() {
	f.wg.Wait()
}

// RefreshMarkers queries markers for the current region and filter. On
// success the marker set is replaced wholesale; on failure the previous set
// is kept and the error is reported.
func (f *MapQueryFlow) RefreshMarkers(ctx context.Context) error {
	f.mu.Lock()
	f.markerSeq++
	seq := f.markerSeq
	scope := models.NewScope(f.region, f.radius, f.activeCategories())
	f.mu.Unlock()

	marks, err := f.api.QueryMarkers(ctx, scope)

	f.mu.Lock()
	if seq != f.markerSeq {
		f.mu.Unlock()
		f.log.Debug(ctx, "stale marker response dropped", "seq", seq)
		return err
	}
	if err != nil {
		f.err = err
	} else {
		f.markers = models.Markers(marks)
		f.err = nil
	}
	st := f.snapshot()
	f.mu.Unlock()

	if err != nil {
		f.log.Warn(ctx, "marker refresh failed", "error", err)
	} else {
		f.log.Debug(ctx, "markers refreshed", "received", len(marks), "kept", len(st.Markers))
	}
	f.publish(st)
	return err
}

// LoadPreview replaces the current preview with the one for postID. The
// loading flag is cleared once the request completes, whatever its outcome.
func (f *MapQueryFlow) LoadPreview(ctx context.Context, postID int64) error {
	f.mu.Lock()
	f.previewSeq++
	seq := f.previewSeq
	f.preview = nil
	f.previewLoading = true
	st := f.snapshot()
	f.mu.Unlock()
	f.publish(st)

	p, err := f.api.PostPreview(ctx, postID)

	f.mu.Lock()
	if seq != f.previewSeq {
		f.mu.Unlock()
		return err
	}
	f.previewLoading = false
	if err != nil {
		f.err = err
	} else {
		f.preview = p
		f.err = nil
	}
	st = f.snapshot()
	f.mu.Unlock()

	if err != nil {
		f.log.Warn(ctx, "preview failed", "post_id", postID, "error", err)
	}
	f.publish(st)
	return err
}

func (f *MapQueryFlow) refreshAsync(ctx context.Context) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		_ = f.RefreshMarkers(ctx)
	}()
}

// activeCategories returns the filter in a stable order. Callers hold f.mu.
func (f *MapQueryFlow) activeCategories() []models.Category {
	cats := make([]models.Category, 0, len(f.active))
	for c := range f.active {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	return cats
}

// snapshot copies the state. Callers hold f.mu.
func (f *MapQueryFlow) snapshot() MapState {
	return MapState{
		Region:         f.region,
		Categories:     f.activeCategories(),
		Markers:        slices.Clone(f.markers),
		Preview:        f.preview,
		PreviewLoading: f.previewLoading,
		Err:            f.err,
	}
}
