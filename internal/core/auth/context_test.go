package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// BearerToken Tests
// =============================================================================

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", ""},
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer token", "token"},
		{"basic scheme", "Basic dXNlcjpwYXNz", ""},
		{"prefix only", "Bearer ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BearerToken(MapHeaderGetter{HeaderAuthorization: tt.header})
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// Redirect Tests
// =============================================================================

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/new/", LoginURL("/auth/login/", "/new/"))
	assert.Equal(t, "/auth/login/", LoginURL("/auth/login/", ""))
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/follow/", "/follow/"},
		{"/TestUser/1/?page=2", "/TestUser/1/?page=2"},
		{"", "/"},
		{"https://evil.example/", "/"},
		{"//evil.example/", "/"},
		{"/\\evil.example", "/"},
		{"relative/path", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeRedirect(tt.next, "/"))
		})
	}
}

// =============================================================================
// Context Storage Tests
// =============================================================================

func TestFromContext_Missing(t *testing.T) {
	ctx := FromContext(context.Background())
	assert.False(t, ctx.Authenticated)
	assert.Zero(t, ctx.UserID)
}

func TestWithContext_RoundTrip(t *testing.T) {
	want := Context{UserID: 42, Username: "leo", Authenticated: true}
	got := FromContext(WithContext(context.Background(), want))
	assert.Equal(t, want, got)
}

func TestLoginURL_EscapesQuery(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/follow/%3Fpage%3D2", LoginURL("/auth/login/", "/follow/?page=2"))
}
