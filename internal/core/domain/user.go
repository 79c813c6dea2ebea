package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// =============================================================================
// User
// =============================================================================

// User is a registered author or reader.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName returns "First Last", or the username when both names are empty.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u User) String() string {
	return u.Username
}

// AuthorProfile is a user together with the counters shown on the profile page.
type AuthorProfile struct {
	User
	PostsCount     int `json:"posts_count"`
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
}

// =============================================================================
// Validation Functions (Pure)
// =============================================================================

var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

// ValidateUsername validates a username.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if utf8.RuneCountInString(username) > 150 {
		return ErrUsernameTooLong
	}
	if !usernameRegex.MatchString(username) {
		return ErrUsernameInvalidChars
	}
	return nil
}

// ValidateEmail validates an optional email address.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePersonName validates first or last name length.
func ValidatePersonName(name string) error {
	if utf8.RuneCountInString(name) > 150 {
		return ErrNameTooLong
	}
	return nil
}

// NewUser creates a user after validating its identity fields.
// The password hash is set by the caller.
func NewUser(username, email, firstName, lastName string) (*User, error) {
	errs := ValidationErrors{}
	errs.AddErr("username", ValidateUsername(username))
	errs.AddErr("email", ValidateEmail(email))
	errs.AddErr("first_name", ValidatePersonName(firstName))
	errs.AddErr("last_name", ValidatePersonName(lastName))
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &User{
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: time.Now().UTC(),
	}, nil
}
