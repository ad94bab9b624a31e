package pagination

const (
	// DefaultPageSize is the storefront listing size.
	DefaultPageSize = 20
	// MaxPageSize caps admin listings.
	MaxPageSize = 100
)

// Page describes a resolved page of a numbered listing.
type Page struct {
	Number      int  `json:"page"`
	Size        int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NormalizeSize enforces the default and maximum page sizes.
func NormalizeSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Resolve clamps the requested page into [1, last page]. An empty listing
// still has one (empty) page.
func Resolve(requested, size, total int) Page {
	size = NormalizeSize(size)
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	number := requested
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}
	return Page{
		Number:      number,
		Size:        size,
		TotalPages:  pages,
		TotalItems:  total,
		HasNext:     number < pages,
		HasPrevious: number > 1,
	}
}

// Offset is the zero-based index of the page's first row.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Bounds returns the [start, end) slice indices of the page within its listing.
func (p Page) Bounds() (int, int) {
	start := p.Offset()
	if start > p.TotalItems {
		start = p.TotalItems
	}
	end := start + p.Size
	if end > p.TotalItems {
		end = p.TotalItems
	}
	return start, end
}
