package shared

// Listing pages default to DefaultPerPage rows and never exceed MaxPerPage.
const (
	DefaultPerPage = 50
	MaxPerPage     = 500
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination clamps the requested page against total rows.
func NewPagination(page, perPage, total int) Pagination {
	switch {
	case perPage <= 0:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}
	pages := (total + perPage - 1) / perPage
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}

// Offset is the number of rows preceding the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasNext reports whether another page follows.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}
