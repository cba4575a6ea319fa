package pagination

// Bounds on page-based listing endpoints.
const (
	defaultPage = 1
	defaultSize = 20
	maxSize     = 100
)

// Pagination carries page/page_size query parameters. Bind it with
// ShouldBindQuery onto a value from New so absent parameters keep the
// defaults instead of failing the min validation.
type Pagination struct {
	Page     int `form:"page" binding:"min=1"`
	PageSize int `form:"page_size" binding:"min=1,max=100"`
}

// New returns pagination prefilled with defaults.
func New() *Pagination {
	return &Pagination{Page: defaultPage, PageSize: defaultSize}
}

// Limit returns the clamped page size for database queries.
func (p *Pagination) Limit() int {
	switch {
	case p.PageSize < 1:
		return defaultSize
	case p.PageSize > maxSize:
		return maxSize
	}
	return p.PageSize
}

// Offset returns the row offset for database queries.
func (p *Pagination) Offset() int {
	if p.Page < 1 {
		p.Page = defaultPage
	}
	return (p.Page - 1) * p.Limit()
}

// PageInfo is the pagination block included in list responses.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Info builds the response pagination block for a total row count.
func (p *Pagination) Info(total int64) PageInfo {
	size := p.Limit()
	pages := int((total + int64(size) - 1) / int64(size))
	return PageInfo{
		Page:       p.Page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
	}
}
