package listing

// Pagination is derived from the last total and the current page size.
type Pagination struct {
	Page         int `json:"page"`
	PerPage      int `json:"perPage"`
	TotalResults int `json:"totalResults"`
	TotalPages   int `json:"totalPages"`
}

// TotalPages returns ceil(total/perPage), or 0 when either is not positive.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// HasNext reports whether a page follows the current one.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether a page precedes the current one.
func (p Pagination) HasPrev() bool { return p.Page > 1 }
