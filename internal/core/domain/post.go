package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Post
// =============================================================================

// Post is a single blog entry written by an author, optionally in a group.
type Post struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
	AuthorID int64     `json:"author_id"`
	GroupID  *int64    `json:"group_id,omitempty"`
	Image    string    `json:"image,omitempty"`

	// Populated by listing queries.
	Author   User      `json:"author"`
	Group    *Group    `json:"group,omitempty"`
	Comments []Comment `json:"comments,omitempty"`
}

// NewPost validates text and returns a post authored by authorID.
func NewPost(authorID int64, text string, groupID *int64) (*Post, error) {
	if err := ValidateText(text); err != nil {
		return nil, ValidationErrors{"text": err.Error()}
	}
	return &Post{
		Text:     text,
		AuthorID: authorID,
		GroupID:  groupID,
		PubDate:  time.Now().UTC(),
	}, nil
}

func (p Post) String() string {
	return Truncate(p.Text, 15)
}

// =============================================================================
// Comment
// =============================================================================

// Comment is a reader's reply to a post.
type Comment struct {
	ID       int64     `json:"id"`
	PostID   int64     `json:"post_id"`
	AuthorID int64     `json:"author_id"`
	Text     string    `json:"text"`
	Created  time.Time `json:"created"`

	Author User `json:"author"`
}

// NewComment validates text and returns a comment on postID by authorID.
func NewComment(postID, authorID int64, text string) (*Comment, error) {
	if err := ValidateText(text); err != nil {
		return nil, ValidationErrors{"text": err.Error()}
	}
	return &Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
		Created:  time.Now().UTC(),
	}, nil
}

func (c Comment) String() string {
	return Truncate(c.Text, 15)
}

// =============================================================================
// Helpers
// =============================================================================

// ValidateText rejects empty or whitespace-only post and comment bodies.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrTextRequired
	}
	return nil
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
