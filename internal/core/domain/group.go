package domain

import (
	"strings"
	"unicode/utf8"
)

// =============================================================================
// Group
// =============================================================================

// Group is a themed community that posts may belong to.
type Group struct {
	ID          int64  `json:"id" yaml:"-"`
	Title       string `json:"title" yaml:"title"`
	Slug        string `json:"slug" yaml:"slug"`
	Description string `json:"description" yaml:"description"`
}

func (g Group) String() string {
	return g.Title
}

// NewGroup validates the fields and returns a group. An empty slug is
// derived from the title.
func NewGroup(title, slug, description string) (*Group, error) {
	title = strings.TrimSpace(title)
	if slug == "" {
		slug = Slugify(title)
	}
	g := &Group{Title: title, Slug: slug, Description: strings.TrimSpace(description)}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks every group field.
func (g Group) Validate() error {
	errs := ValidationErrors{}
	switch {
	case strings.TrimSpace(g.Title) == "":
		errs.AddErr("title", ErrTitleRequired)
	case utf8.RuneCountInString(g.Title) > 200:
		errs.AddErr("title", ErrTitleTooLong)
	}
	errs.AddErr("slug", ValidateSlug(g.Slug))
	if strings.TrimSpace(g.Description) == "" {
		errs.AddErr("description", ErrDescriptionRequired)
	}
	return errs.Err()
}
