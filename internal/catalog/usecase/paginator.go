package usecase

// Page is the visible window of a collection.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	Total   int  `json:"total"`
	HasPrev bool `json:"hasPrev"`
	HasNext bool `json:"hasNext"`
}

// Slice returns collection[(page-1)*size : page*size] clamped to the
// collection bounds. Pages below one are treated as one.
func Slice[T any](collection []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}

	start := min((page-1)*size, len(collection))
	end := min(page*size, len(collection))

	items := make([]T, end-start)
	copy(items, collection[start:end])

	return Page[T]{
		Items:   items,
		Page:    page,
		Size:    size,
		Total:   len(collection),
		HasPrev: page > 1,
		HasNext: page*size < len(collection),
	}
}

// LastPage returns the highest page holding at least one record, or 1.
func LastPage(total, size int) int {
	if total <= 0 || size < 1 {
		return 1
	}
	return (total + size - 1) / size
}

// PagePolicy decides where the cursor lands once a deletion shrinks the collection.
type PagePolicy int

const (
	// PageClamp moves the cursor back to the last non-empty page.
	PageClamp PagePolicy = iota
	// PageStale leaves the cursor untouched, possibly on an empty page.
	PageStale
)

// ParsePagePolicy maps a configuration value onto a policy.
func ParsePagePolicy(s string) PagePolicy {
	if s == "stale" {
		return PageStale
	}
	return PageClamp
}

func (p PagePolicy) String() string {
	if p == PageStale {
		return "stale"
	}
	return "clamp"
}

func (p PagePolicy) apply(page, total, size int) int {
	if p == PageStale {
		return page
	}
	return min(page, LastPage(total, size))
}
