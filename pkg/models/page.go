package models

const (
	// DefaultLimit is applied when a list request does not set a limit.
	DefaultLimit = 50
	// MaxLimit caps any list request.
	MaxLimit = 1000
)

// Page carries the standard pagination and ordering parameters shared by every
// list filter.
type Page struct {
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
	Sort   string `query:"sort"`
	Order  string `query:"order"`
}

// Normalize clamps the page to the supported bounds.
func (p *Page) Normalize() {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Order != "asc" && p.Order != "desc" {
		p.Order = "desc"
	}
}

// List is the uniform list result shape.
type List[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}
