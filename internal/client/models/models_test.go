package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewScope_EmptyCategoriesOmitted(t *testing.T) {
	for _, cats := range [][]Category{nil, {}} {
		s := NewScope(Region{Latitude: 55.75, Longitude: 37.61}, 5000, cats)
		require.Nil(t, s.Categories)

		b, err := json.Marshal(s)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "categories")
	}
}

func TestNewScope_CopiesCategories(t *testing.T) {
	cats := []Category{CategoryFact, CategoryEvent}
	s := NewScope(Region{Latitude: 1, Longitude: 2}, 300, cats)
	cats[0] = CategoryWarning

	assert.Equal(t, []Category{CategoryFact, CategoryEvent}, s.Categories)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"latitude":1,"longitude":2,"distance":300,"categories":["FACT","EVENT"]}`, string(b))
}

func TestMarkers_DropsIncomplete(t *testing.T) {
	var marks []PostMark
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": 1, "latitude": 10.5, "longitude": 20.5},
		{"id": 2, "latitude": 11},
		{"latitude": 12, "longitude": 22},
		{"id": 4, "longitude": 24},
		{"id": 5, "latitude": 0, "longitude": 0}
	]`), &marks))

	got := Markers(marks)
	assert.Equal(t, []Marker{
		{ID: 1, Latitude: 10.5, Longitude: 20.5},
		{ID: 5, Latitude: 0, Longitude: 0},
	}, got)
}

func TestMarkers_EmptyInputNonNil(t *testing.T) {
	got := Markers(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" fact ")
	require.NoError(t, err)
	assert.Equal(t, CategoryFact, c)

	_, err = ParseCategory("gossip")
	require.Error(t, err)
}

func TestTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2024-03-01T10:20:30Z"`, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"offset", `"2024-03-01T13:20:30+03:00"`, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"local fraction", `"2024-03-01T10:20:30.5"`, time.Date(2024, 3, 1, 10, 20, 30, 500000000, time.UTC)},
		{"local", `"2024-03-01T10:20:30"`, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"date", `"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}

func TestTimestamp_Invalid(t *testing.T) {
	var ts Timestamp
	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	require.Error(t, json.Unmarshal([]byte(`12345`), &ts))
}

func TestDraft_PublishPayload(t *testing.T) {
	d := Draft{
		ID:        ptr(int64(42)),
		Text:      "Hello",
		Category:  CategoryFact,
		Latitude:  ptr(55.0),
		Longitude: ptr(37.0),
	}

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42,"text":"Hello","category":"FACT","contents":null,"latitude":55,"longitude":37}`, string(b))
}

func TestDraft_Region(t *testing.T) {
	var d Draft
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"contents":[101,102],"latitude":null}`), &d))

	_, ok := d.Region()
	assert.False(t, ok)
	assert.Equal(t, []int64{101, 102}, d.Contents)

	d.Latitude, d.Longitude = ptr(1.5), ptr(2.5)
	r, ok := d.Region()
	require.True(t, ok)
	assert.Equal(t, Region{Latitude: 1.5, Longitude: 2.5}, r)
}

func TestContentItem_Pending(t *testing.T) {
	assert.True(t, ContentItem{Key: "k"}.Pending())
	assert.False(t, ContentItem{ID: ptr(int64(1))}.Pending())
}

func TestParseContentSize(t *testing.T) {
	got, err := ParseContentSize(" large ")
	require.NoError(t, err)
	assert.Equal(t, SizeLarge, got)

	_, err = ParseContentSize("huge")
	assert.Error(t, err)
}
