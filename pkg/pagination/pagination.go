package pagination

import (
	"net/http"
	"strconv"
)

// Params holds the pagination window for a list query. PerPage is fixed by
// service configuration, never by the caller; only the page number comes from
// the request.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// FromRequest extracts the page number from the request query string and
// combines it with the configured page size. Invalid or missing page values
// fall back to page 1.
func FromRequest(r *http.Request, perPage int) Params {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if perPage < 1 {
		perPage = 1
	}
	return Params{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
	}
}

// TotalPages returns the number of pages needed for totalCount items.
func (p Params) TotalPages(totalCount int) int {
	pages := totalCount / p.PerPage
	if totalCount%p.PerPage > 0 {
		pages++
	}
	return pages
}
