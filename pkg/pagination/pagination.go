package pagination

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 25
	// MaxPageSize caps how many rows any list query can request.
	MaxPageSize = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Meta describes the page returned alongside list payloads.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// Normalize enforces the configured defaults and maximums.
func Normalize(p Params) Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	n := Normalize(p)
	return (n.Page - 1) * n.PageSize
}

// BuildMeta computes page metadata for the given total row count.
func BuildMeta(p Params, total int64) Meta {
	n := Normalize(p)
	pages := int(total) / n.PageSize
	if int(total)%n.PageSize != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return Meta{
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalItems: total,
		TotalPages: pages,
	}
}
