package models

// Reaction is a single reaction left on a post.
type Reaction struct {
	Author string `json:"author"`
	Type   string `json:"type"`
}

// PostPreview is the read-only projection shown in the preview sheet.
type PostPreview struct {
	Created   *Timestamp `json:"created"`
	Author    string     `json:"author"`
	Text      string     `json:"text"`
	Category  Category   `json:"category"`
	Contents  []int64    `json:"contents"`
	Reactions []Reaction `json:"reactions"`
}

// Draft is a post that has been created on the server but not yet published.
//
// Contents is owned by the server: the client never sends a recomputed list,
// so it stays nil in publish requests and encodes as null.
type Draft struct {
	ID        *int64     `json:"id"`
	Author    string     `json:"author,omitempty"`
	Created   *Timestamp `json:"created,omitempty"`
	Text      string     `json:"text"`
	Category  Category   `json:"category"`
	Contents  []int64    `json:"contents"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
}

// Region returns the draft location if the server supplied one.
func (d *Draft) Region() (Region, bool) {
	if d.Latitude == nil || d.Longitude == nil {
		return Region{}, false
	}
	return Region{Latitude: *d.Latitude, Longitude: *d.Longitude}, true
}
