package catalog

import (
	"sort"
	"strings"
)

// Status selects items by their Active flag.
type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Next cycles all -> active -> inactive -> all.
func (s Status) Next() Status {
	switch s {
	case StatusActive:
		return StatusInactive
	case StatusInactive:
		return StatusAll
	default:
		return StatusActive
	}
}

// Filter narrows a list. Zero values match everything.
type Filter struct {
	Search     string // case-insensitive substring of the name
	Status     Status
	CategoryID int64 // 0 matches any category
}

func (f Filter) matchName(name string) bool {
	q := strings.TrimSpace(f.Search)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(q))
}

func (f Filter) matchStatus(active bool) bool {
	switch f.Status {
	case StatusActive:
		return active
	case StatusInactive:
		return !active
	default:
		return true
	}
}

// FilterCategories returns the categories matching f, in input order.
func FilterCategories(items []Category, f Filter) []Category {
	out := make([]Category, 0, len(items))
	for _, c := range items {
		if f.matchName(c.Name) && f.matchStatus(c.Active) {
			out = append(out, c)
		}
	}
	return out
}

// FilterProducts returns the products matching f, in input order.
func FilterProducts(items []Product, f Filter) []Product {
	out := make([]Product, 0, len(items))
	for _, p := range items {
		if !f.matchName(p.Name) || !f.matchStatus(p.Active) {
			continue
		}
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterSubcategories returns the subcategories matching f. Status is ignored.
func FilterSubcategories(items []Subcategory, f Filter) []Subcategory {
	out := make([]Subcategory, 0, len(items))
	for _, s := range items {
		if !f.matchName(s.Name) {
			continue
		}
		if f.CategoryID != 0 && s.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, s)
	}
	return out
}

// InSubcategory returns the products assigned to subcategory id.
func InSubcategory(items []Product, id int64) []Product {
	var out []Product
	for _, p := range items {
		if p.SubcategoryID != nil && *p.SubcategoryID == id {
			out = append(out, p)
		}
	}
	return out
}

// RecentProducts returns up to n products, newest CreatedAt first.
func RecentProducts(items []Product, n int) []Product {
	sorted := append([]Product(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Paginate returns page (1-based) of size items and the total page count.
func Paginate[T any](items []T, page, size int) ([]T, int) {
	if size <= 0 {
		return items, 1
	}
	pages := (len(items) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil, pages
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], pages
}
