package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPaginator_NumPages(t *testing.T) {
	tests := []struct {
		count, perPage, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NewPaginator(tt.count, tt.perPage).NumPages(), "count=%d per=%d", tt.count, tt.perPage)
	}
}

func TestNewPaginator_DefaultsPageSize(t *testing.T) {
	p := NewPaginator(5, 0)
	assert.Equal(t, DefaultPageSize, p.PerPage)
}

func TestPaginator_Page(t *testing.T) {
	p := NewPaginator(25, 10)

	tests := []struct {
		name string
		raw  string
		want Page
	}{
		{"empty selects first", "", Page{Number: 1, PerPage: 10, Count: 25, NumPages: 3}},
		{"explicit", "2", Page{Number: 2, PerPage: 10, Count: 25, NumPages: 3}},
		{"garbage selects first", "abc", Page{Number: 1, PerPage: 10, Count: 25, NumPages: 3}},
		{"zero clamps", "0", Page{Number: 1, PerPage: 10, Count: 25, NumPages: 3}},
		{"beyond clamps", "99", Page{Number: 3, PerPage: 10, Count: 25, NumPages: 3}},
		{"last keyword", "last", Page{Number: 3, PerPage: 10, Count: 25, NumPages: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, p.Page(tt.raw)); diff != "" {
				t.Errorf("Page(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestPage_Navigation(t *testing.T) {
	page := NewPaginator(25, 10).Page("2")

	assert.Equal(t, 10, page.Offset())
	assert.Equal(t, 10, page.Limit())
	assert.True(t, page.HasNext())
	assert.True(t, page.HasPrevious())
	assert.True(t, page.HasOtherPages())
	assert.Equal(t, 3, page.NextNumber())
	assert.Equal(t, 1, page.PreviousNumber())
	if diff := cmp.Diff([]int{1, 2, 3}, page.Range()); diff != "" {
		t.Errorf("Range mismatch (-want +got):\n%s", diff)
	}
}

func TestPage_SinglePage(t *testing.T) {
	page := NewPaginator(3, 10).Page("")

	assert.False(t, page.HasNext())
	assert.False(t, page.HasPrevious())
	assert.False(t, page.HasOtherPages())
	assert.Equal(t, 1, page.NextNumber())
	assert.Equal(t, 1, page.PreviousNumber())
}
