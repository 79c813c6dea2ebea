package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/artpar/yatube/internal/core/domain"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// =============================================================================
// Post Form
// =============================================================================

// PostForm is the cleaned content of a post create/edit submission.
type PostForm struct {
	Text    string
	GroupID *int64
}

// ValidatePostForm checks the text and parses the optional group ID.
// An empty group value means "no group".
func ValidatePostForm(text, group string) (PostForm, domain.ValidationErrors) {
	errs := domain.ValidationErrors{}
	form := PostForm{Text: strings.TrimRight(text, " \t\r\n")}

	errs.AddErr("text", domain.ValidateText(text))

	if group = strings.TrimSpace(group); group != "" {
		id, err := strconv.ParseInt(group, 10, 64)
		if err != nil || id <= 0 {
			errs.Add("group", "select a valid choice")
		} else {
			form.GroupID = &id
		}
	}

	if len(errs) > 0 {
		return form, errs
	}
	return form, nil
}

// =============================================================================
// Comment Form
// =============================================================================

// ValidateCommentForm checks a comment body.
func ValidateCommentForm(text string) (string, domain.ValidationErrors) {
	if err := domain.ValidateText(text); err != nil {
		return "", domain.ValidationErrors{"text": err.Error()}
	}
	return strings.TrimRight(text, " \t\r\n"), nil
}

// =============================================================================
// Account Forms
// =============================================================================

// SignupForm is the cleaned content of a registration submission.
type SignupForm struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// ValidateSignupForm validates identity fields and the password pair.
func ValidateSignupForm(firstName, lastName, username, email, password1, password2 string) (SignupForm, domain.ValidationErrors) {
	form := SignupForm{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		Password:  password1,
	}

	errs := domain.ValidationErrors{}
	errs.AddErr("username", domain.ValidateUsername(form.Username))
	errs.AddErr("email", domain.ValidateEmail(form.Email))
	errs.AddErr("first_name", domain.ValidatePersonName(form.FirstName))
	errs.AddErr("last_name", domain.ValidatePersonName(form.LastName))
	validatePasswordPair(errs, "password", password1, password2)

	if len(errs) > 0 {
		return form, errs
	}
	return form, nil
}

// ValidatePasswordChange validates the new password pair. The old password
// is checked against the stored hash by the caller.
func ValidatePasswordChange(oldPassword, newPassword1, newPassword2 string) domain.ValidationErrors {
	errs := domain.ValidationErrors{}
	if oldPassword == "" {
		errs.Add("old_password", "this field is required")
	}
	validatePasswordPair(errs, "new_password", newPassword1, newPassword2)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validatePasswordPair(errs domain.ValidationErrors, field, p1, p2 string) {
	switch {
	case p1 == "":
		errs.Add(field+"1", "this field is required")
	case utf8.RuneCountInString(p1) < MinPasswordLength:
		errs.Add(field+"1", "password must contain at least 8 characters")
	case p1 != p2:
		errs.Add(field+"2", "the two password fields didn't match")
	}
}
