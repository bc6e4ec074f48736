// Package models defines the wire and view types shared by the gateway and the flows.
package models

import (
	"fmt"
	"strings"
)

// Category classifies a post.
type Category string

const (
	CategoryFact     Category = "FACT"
	CategoryQuestion Category = "QUESTION"
	CategoryEvent    Category = "EVENT"
	CategoryWarning  Category = "WARNING"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryFact, CategoryQuestion, CategoryEvent, CategoryWarning}

// ParseCategory matches s against the known categories, ignoring case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Region is the center of the area currently viewed on the map.
type Region struct {
	Latitude  float64
	Longitude float64
}

// Scope is the body of a marker query. A nil Categories slice means no filter
// and is omitted from the payload entirely.
type Scope struct {
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Distance   float64    `json:"distance"`
	Categories []Category `json:"categories,omitempty"`
}

// NewScope builds a query around region. An empty category set yields an
// unfiltered scope rather than one that matches nothing.
func NewScope(region Region, distanceMeters float64, categories []Category) Scope {
	s := Scope{
		Latitude:  region.Latitude,
		Longitude: region.Longitude,
		Distance:  distanceMeters,
	}
	if len(categories) > 0 {
		s.Categories = append([]Category(nil), categories...)
	}
	return s
}

// PostMark is a marker as delivered by the API. Any field may be missing.
type PostMark struct {
	ID        *int64   `json:"id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Marker is a PostMark with every field present.
type Marker struct {
	ID        int64
	Latitude  float64
	Longitude float64
}

// Marker converts m, reporting false when any field is missing.
func (m PostMark) Marker() (Marker, bool) {
	if m.ID == nil || m.Latitude == nil || m.Longitude == nil {
		return Marker{}, false
	}
	return Marker{ID: *m.ID, Latitude: *m.Latitude, Longitude: *m.Longitude}, true
}

// Markers drops incomplete marks and converts the rest, preserving order.
func Markers(marks []PostMark) []Marker {
	result := make([]Marker, 0, len(marks))
	for _, m := range marks {
		if v, ok := m.Marker(); ok {
			result = append(result, v)
		}
	}
	return result
}
