package shared

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total-1)/perPage + 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Bounds returns the slice window [start, end) of the current page within
// total items.
func (p Pagination) Bounds() (int, int) {
	if p.Total <= 0 || p.PerPage <= 0 || p.Page <= 0 {
		return 0, 0
	}
	// Compare before multiplying so huge page or per-page values cannot overflow.
	if p.Page-1 > p.Total/p.PerPage {
		return p.Total, p.Total
	}
	start := min((p.Page-1)*p.PerPage, p.Total)
	end := start + min(p.PerPage, p.Total-start)
	return start, end
}

// Paginate returns the items of the requested page.
func Paginate[T any](items []T, p Pagination) []T {
	start, end := p.Bounds()
	return items[start:end]
}
