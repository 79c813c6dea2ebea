package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Slugify Tests
// =============================================================================

func TestSlugify_Basic(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("Hello World"))
}

func TestSlugify_CollapsesSpaces(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("hello   world"))
}

func TestSlugify_TrimsHyphens(t *testing.T) {
	assert.Equal(t, "trim-me", Slugify(" trim me "))
}

func TestSlugify_TruncatesTo100(t *testing.T) {
	slug := Slugify(strings.Repeat("a", 150))
	assert.Len(t, slug, 100)
}

func TestSlugify_TableDriven(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"basic", "Hello World", "hello-world"},
		{"numbers", "Go 1.24 news!", "go-124-news"},
		{"underscores kept", "hello_world", "hello_world"},
		{"cyrillic dropped", "Лев Толстой", ""},
		{"mixed", "Cats и Dogs", "cats-dogs"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

// =============================================================================
// ValidateSlug Tests
// =============================================================================

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr error
	}{
		{"valid", "test-group_1", nil},
		{"empty", "", ErrSlugRequired},
		{"too long", strings.Repeat("s", 101), ErrSlugTooLong},
		{"space", "bad slug", ErrSlugInvalidChars},
		{"non latin", "группа", ErrSlugInvalidChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
