// Package content derives filtered, paginated views over small in-memory collections.
package content

import "strings"

// Item is anything the browser can search and group by category.
type Item interface {
	SearchText() []string
	CategoryRef() string
}

type PageInfo struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	PageSize    int `json:"page_size"`
}

// Filter keeps items containing term (case-insensitive) in any text field and,
// when category is set, referencing exactly that category.
func Filter[T Item](items []T, term, category string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if category != "" && it.CategoryRef() != category {
			continue
		}
		if term != "" && !containsTerm(it.SearchText(), term) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func containsTerm(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Paginate returns items [(page-1)*size, page*size) clamped to len(items).
// Out-of-range pages give an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func TotalPages(n, size int) int {
	if size < 1 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Browser is the per-screen view state: source items plus search, category
// and page. Changing the source, term or category resets the page to 1.
type Browser[T Item] struct {
	items    []T
	term     string
	category string
	page     int
	size     int

	filtered []T
	current  []T
}

func NewBrowser[T Item](items []T, pageSize int) *Browser[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	b := &Browser[T]{items: items, page: 1, size: pageSize}
	b.recompute()
	return b
}

func (b *Browser[T]) SetItems(items []T) {
	b.items = items
	b.page = 1
	b.recompute()
}

func (b *Browser[T]) SetSearch(term string) {
	b.term = term
	b.page = 1
	b.recompute()
}

func (b *Browser[T]) SetCategory(category string) {
	b.category = category
	b.page = 1
	b.recompute()
}

func (b *Browser[T]) SetPage(page int) {
	b.page = page
	b.current = Paginate(b.filtered, b.page, b.size)
}

func (b *Browser[T]) Page() []T { return b.current }

func (b *Browser[T]) Info() PageInfo {
	return PageInfo{
		CurrentPage: b.page,
		TotalPages:  TotalPages(len(b.filtered), b.size),
		TotalItems:  len(b.filtered),
		PageSize:    b.size,
	}
}

func (b *Browser[T]) recompute() {
	b.filtered = Filter(b.items, b.term, b.category)
	b.current = Paginate(b.filtered, b.page, b.size)
}
