package util

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a normalized page request. Offset is derived from Number and Size.
type Page struct {
	Number int
	Size   int
	Offset int
}

// Paginate clamps page to >= 1 and size to (0, MaxPageSize].
func Paginate(page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return Page{Number: page, Size: size, Offset: (page - 1) * size}
}

// ParsePage reads page and size query values. Unparseable values fall back
// to the defaults.
func ParsePage(page, size string) Page {
	p, _ := strconv.Atoi(page)
	s, _ := strconv.Atoi(size)
	return Paginate(p, s)
}
