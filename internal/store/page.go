package store

// Page is the pagination wire shape.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// MapPage converts the items of a page while keeping its metadata.
func MapPage[T, U any](p Page[T], fn func(*T) U) Page[U] {
	out := Page[U]{
		Items: make([]U, 0, len(p.Items)),
		Total: p.Total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: p.Pages,
	}
	for i := range p.Items {
		out.Items = append(out.Items, fn(&p.Items[i]))
	}
	return out
}
