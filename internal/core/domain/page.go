package domain

import (
	"strconv"
	"strings"
)

// =============================================================================
// Pagination
// =============================================================================

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Paginator splits Count items into pages of PerPage items.
type Paginator struct {
	Count   int
	PerPage int
}

// NewPaginator returns a paginator, falling back to DefaultPageSize for a
// non-positive perPage.
func NewPaginator(count, perPage int) Paginator {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	if count < 0 {
		count = 0
	}
	return Paginator{Count: count, PerPage: perPage}
}

// NumPages returns the number of pages. An empty listing still has one page.
func (p Paginator) NumPages() int {
	if p.Count == 0 || p.PerPage <= 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// Page resolves a raw "page" query value. Invalid values select the first
// page, "last" and out-of-range numbers select the last one.
func (p Paginator) Page(raw string) Page {
	last := p.NumPages()
	number := 1

	raw = strings.TrimSpace(raw)
	switch {
	case raw == "last":
		number = last
	case raw != "":
		if n, err := strconv.Atoi(raw); err == nil {
			number = n
		}
	}

	if number < 1 {
		number = 1
	}
	if number > last {
		number = last
	}

	return Page{
		Number:   number,
		PerPage:  p.PerPage,
		Count:    p.Count,
		NumPages: last,
	}
}

// Page is one window of a paginated listing.
type Page struct {
	Number   int `json:"number"`
	PerPage  int `json:"per_page"`
	Count    int `json:"count"`
	NumPages int `json:"num_pages"`
}

// Offset is the number of items preceding this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit is the maximum number of items on this page.
func (p Page) Limit() int {
	return p.PerPage
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// Range lists every page number, for rendering page links.
func (p Page) Range() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
