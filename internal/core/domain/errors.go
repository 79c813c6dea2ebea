// Package domain contains the core blogging types and their validation rules.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import (
	"errors"
	"sort"
	"strings"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// User validation errors
	ErrUsernameRequired     = errors.New("username is required")
	ErrUsernameTooLong      = errors.New("username must be at most 150 characters")
	ErrUsernameInvalidChars = errors.New("username may contain only letters, digits and @/./+/-/_ characters")
	ErrEmailInvalid         = errors.New("enter a valid email address")
	ErrNameTooLong          = errors.New("name must be at most 150 characters")

	// Group validation errors
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title must be at most 200 characters")
	ErrSlugRequired        = errors.New("slug is required")
	ErrSlugTooLong         = errors.New("slug must be at most 100 characters")
	ErrSlugInvalidChars    = errors.New("slug may contain only latin letters, digits, hyphens and underscores")
	ErrDescriptionRequired = errors.New("description is required")

	// Post and comment validation errors
	ErrTextRequired = errors.New("text is required")

	// Follow rules
	ErrSelfFollow = errors.New("users cannot follow themselves")
)

// =============================================================================
// Validation Errors
// =============================================================================

// ValidationErrors collects per-field validation messages for a form or request.
type ValidationErrors map[string]string

// Add records msg for field unless the field already has a message.
func (v ValidationErrors) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// AddErr records err's message for field when err is non-nil.
func (v ValidationErrors) AddErr(field string, err error) {
	if err != nil {
		v.Add(field, err.Error())
	}
}

// Has reports whether field carries a message.
func (v ValidationErrors) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// Get returns the message for field or "".
func (v ValidationErrors) Get(field string) string {
	return v[field]
}

// Err returns v as an error, or nil when no field failed.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
