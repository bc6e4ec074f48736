package models

import (
	"fmt"
	"strings"
)

// ContentSize selects the rendition of an image requested from the API.
type ContentSize string

const (
	SizeSmall  ContentSize = "SMALL"
	SizeMedium ContentSize = "MEDIUM"
	SizeLarge  ContentSize = "LARGE"
)

// ParseContentSize matches s against the known sizes, ignoring case.
func ParseContentSize(s string) (ContentSize, error) {
	switch c := ContentSize(strings.ToUpper(strings.TrimSpace(s))); c {
	case SizeSmall, SizeMedium, SizeLarge:
		return c, nil
	}
	return "", fmt.Errorf("unknown content size %q", s)
}

const (
	// ContentKindImage is the only content kind the client uploads.
	ContentKindImage = "IMAGE"
	// MIMEJPEG is the content type of every uploaded image part.
	MIMEJPEG = "image/jpeg"
)

// ContentItem is an image attached to a draft.
//
// Existing items carry a server ID; pending items have a nil ID and exist only
// locally until publish. Key is stable for the lifetime of the item and lets
// the presentation layer address either kind uniformly.
type ContentItem struct {
	ID          *int64
	Key         string
	Data        []byte
	Unavailable bool
}

// Pending reports whether the item has not been uploaded yet.
func (c ContentItem) Pending() bool {
	return c.ID == nil
}
