package ledger

const (
	// DefaultPageSize is applied when the caller does not request a size.
	DefaultPageSize = 20
	// MaxPageSize caps the number of entries returned per history page.
	MaxPageSize = 100
)

// Page is a window of a wallet's transaction history, newest first.
type Page struct {
	Entries         []Entry
	CurrentPage     int
	PageSize        int
	TotalCount      int64
	TotalPages      int
	HasPreviousPage bool
	HasNextPage     bool
}

// ClampPaging normalizes caller-supplied pagination parameters: page >= 1,
// 1 <= pageSize <= MaxPageSize with DefaultPageSize when unset.
func ClampPaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// NewPage assembles the pagination envelope for a history window.
func NewPage(entries []Entry, page, pageSize int, total int64) Page {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Page{
		Entries:         entries,
		CurrentPage:     page,
		PageSize:        pageSize,
		TotalCount:      total,
		TotalPages:      totalPages,
		HasPreviousPage: page > 1,
		HasNextPage:     page < totalPages,
	}
}
