package store

import (
	"database/sql"

	"github.com/artpar/yatube/internal/core/domain"
)

// =============================================================================
// Database Row Types
// =============================================================================

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	PasswordHash string `db:"password_hash"`
	Avatar       string `db:"avatar"`
	IsStaff      bool   `db:"is_staff"`
	CreatedAt    dbTime `db:"created_at"`
}

type groupRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
}

// postRow is a post joined with its author and optional group.
type postRow struct {
	ID       int64         `db:"id"`
	Text     string        `db:"text"`
	PubDate  dbTime        `db:"pub_date"`
	AuthorID int64         `db:"author_id"`
	GroupID  sql.NullInt64 `db:"group_id"`
	Image    string        `db:"image"`

	AuthorUsername  string `db:"author_username"`
	AuthorFirstName string `db:"author_first_name"`
	AuthorLastName  string `db:"author_last_name"`
	AuthorAvatar    string `db:"author_avatar"`

	GroupTitle       sql.NullString `db:"group_title"`
	GroupSlug        sql.NullString `db:"group_slug"`
	GroupDescription sql.NullString `db:"group_description"`
}

// commentRow is a comment joined with its author.
type commentRow struct {
	ID       int64  `db:"id"`
	PostID   int64  `db:"post_id"`
	AuthorID int64  `db:"author_id"`
	Text     string `db:"text"`
	Created  dbTime `db:"created"`

	AuthorUsername  string `db:"author_username"`
	AuthorFirstName string `db:"author_first_name"`
	AuthorLastName  string `db:"author_last_name"`
	AuthorAvatar    string `db:"author_avatar"`
}

// =============================================================================
// Conversion Functions
// =============================================================================

func userFromRow(r userRow) domain.User {
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		Avatar:       r.Avatar,
		IsStaff:      r.IsStaff,
		CreatedAt:    r.CreatedAt.Time,
	}
}

func groupFromRow(r groupRow) domain.Group {
	return domain.Group{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
	}
}

func postFromRow(r postRow) domain.Post {
	p := domain.Post{
		ID:       r.ID,
		Text:     r.Text,
		PubDate:  r.PubDate.Time,
		AuthorID: r.AuthorID,
		Image:    r.Image,
		Author: domain.User{
			ID:        r.AuthorID,
			Username:  r.AuthorUsername,
			FirstName: r.AuthorFirstName,
			LastName:  r.AuthorLastName,
			Avatar:    r.AuthorAvatar,
		},
	}
	if r.GroupID.Valid {
		id := r.GroupID.Int64
		p.GroupID = &id
		p.Group = &domain.Group{
			ID:          id,
			Title:       r.GroupTitle.String,
			Slug:        r.GroupSlug.String,
			Description: r.GroupDescription.String,
		}
	}
	return p
}

func commentFromRow(r commentRow) domain.Comment {
	return domain.Comment{
		ID:       r.ID,
		PostID:   r.PostID,
		AuthorID: r.AuthorID,
		Text:     r.Text,
		Created:  r.Created.Time,
		Author: domain.User{
			ID:        r.AuthorID,
			Username:  r.AuthorUsername,
			FirstName: r.AuthorFirstName,
			LastName:  r.AuthorLastName,
			Avatar:    r.AuthorAvatar,
		},
	}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
