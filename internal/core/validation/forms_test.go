package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Post Form Tests
// =============================================================================

func TestValidatePostForm_Valid(t *testing.T) {
	form, errs := ValidatePostForm("Текст нового тестового поста", "3")
	require.Nil(t, errs)
	assert.Equal(t, "Текст нового тестового поста", form.Text)
	require.NotNil(t, form.GroupID)
	assert.Equal(t, int64(3), *form.GroupID)
}

func TestValidatePostForm_NoGroup(t *testing.T) {
	form, errs := ValidatePostForm("text", "")
	require.Nil(t, errs)
	assert.Nil(t, form.GroupID)
}

func TestValidatePostForm_Errors(t *testing.T) {
	_, errs := ValidatePostForm("   ", "abc")
	require.NotNil(t, errs)
	assert.True(t, errs.Has("text"))
	assert.True(t, errs.Has("group"))
}

// =============================================================================
// Comment Form Tests
// =============================================================================

func TestValidateCommentForm(t *testing.T) {
	text, errs := ValidateCommentForm("Nice post\n")
	assert.Nil(t, errs)
	assert.Equal(t, "Nice post", text)

	_, errs = ValidateCommentForm("")
	assert.True(t, errs.Has("text"))
}

// =============================================================================
// Account Form Tests
// =============================================================================

func TestValidateSignupForm(t *testing.T) {
	tests := []struct {
		name     string
		username string
		p1, p2   string
		field    string
	}{
		{"ok", "leo", "longpassword", "longpassword", ""},
		{"missing username", "", "longpassword", "longpassword", "username"},
		{"short password", "leo", "short", "short", "password1"},
		{"mismatch", "leo", "longpassword", "otherpassword", "password2"},
		{"missing password", "leo", "", "", "password1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, errs := ValidateSignupForm(" Leo ", "Tolstoy", tt.username, "", tt.p1, tt.p2)
			if tt.field == "" {
				require.Nil(t, errs)
				assert.Equal(t, "Leo", form.FirstName)
				return
			}
			require.NotNil(t, errs)
			assert.True(t, errs.Has(tt.field), "expected error on %s, got %v", tt.field, errs)
		})
	}
}

func TestValidatePasswordChange(t *testing.T) {
	assert.Nil(t, ValidatePasswordChange("old", "newpassword", "newpassword"))

	errs := ValidatePasswordChange("", "newpassword", "different")
	assert.True(t, errs.Has("old_password"))
	assert.True(t, errs.Has("new_password2"))
}
