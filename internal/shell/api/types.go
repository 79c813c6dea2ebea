package api

import (
	"time"

	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/shell/media"
)

// =============================================================================
// Request Types
// =============================================================================

// CreatePostRequest is the request body for publishing a post.
type CreatePostRequest struct {
	Text  string `json:"text"`
	Group *int64 `json:"group,omitempty"`
}

// UpdatePostRequest is the request body for editing a post. Omitted fields
// keep their value; group 0 removes the post from its group.
type UpdatePostRequest struct {
	Text       *string `json:"text,omitempty"`
	Group      *int64  `json:"group,omitempty"`
	ClearImage bool    `json:"clear_image,omitempty"`
}

// CreateCommentRequest is the request body for commenting on a post.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description"`
}

// =============================================================================
// Response Types
// =============================================================================

// PostResponse is the response for post operations.
type PostResponse struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
	Author   string    `json:"author"`
	Group    *int64    `json:"group"`
	Image    string    `json:"image,omitempty"`
	Comments int       `json:"comments_count"`
}

// PostListResponse is one page of posts.
type PostListResponse struct {
	Results []PostResponse `json:"results"`
	Page    domain.Page    `json:"page"`
}

// CommentResponse is the response for comment operations.
type CommentResponse struct {
	ID      int64     `json:"id"`
	Post    int64     `json:"post"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

// GroupResponse is the response for group operations.
type GroupResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// FollowResponse is returned when a follow is created.
type FollowResponse struct {
	User      string `json:"user"`
	Following string `json:"following"`
	Created   bool   `json:"created"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// =============================================================================
// Converters
// =============================================================================

func postToResponse(p domain.Post) PostResponse {
	resp := PostResponse{
		ID:       p.ID,
		Text:     p.Text,
		PubDate:  p.PubDate,
		Author:   p.Author.Username,
		Group:    p.GroupID,
		Comments: len(p.Comments),
	}
	if p.Image != "" {
		resp.Image = media.URL(p.Image)
	}
	return resp
}

func commentToResponse(c domain.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Post:    c.PostID,
		Author:  c.Author.Username,
		Text:    c.Text,
		Created: c.Created,
	}
}

func groupToResponse(g domain.Group) GroupResponse {
	return GroupResponse{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
	}
}
