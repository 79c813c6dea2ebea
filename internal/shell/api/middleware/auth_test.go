package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/yatube/internal/core/auth"
)

// =============================================================================
// Test Helpers
// =============================================================================

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestAs(ctx *auth.Context) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	if ctx != nil {
		req = req.WithContext(auth.WithContext(req.Context(), *ctx))
	}
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// RequireAuth Tests
// =============================================================================

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name     string
		ctx      *auth.Context
		wantCode int
	}{
		{"no context", nil, http.StatusUnauthorized},
		{"anonymous", &auth.Context{}, http.StatusUnauthorized},
		{"authenticated", &auth.Context{UserID: 1, Username: "leo", Authenticated: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireAuth(nil)(okHandler()).ServeHTTP(rec, requestAs(tt.ctx))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRequireAuth_ErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAuth(nil)(okHandler()).ServeHTTP(rec, requestAs(nil))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decodeError(t, rec)
	assert.Equal(t, "unauthorized", resp.Code)
	assert.Equal(t, "authentication required", resp.Error)
}

// =============================================================================
// RequireStaff Tests
// =============================================================================

func TestRequireStaff(t *testing.T) {
	tests := []struct {
		name     string
		ctx      *auth.Context
		wantCode int
		wantErr  string
	}{
		{"anonymous", nil, http.StatusUnauthorized, "unauthorized"},
		{"regular user", &auth.Context{UserID: 1, Authenticated: true}, http.StatusForbidden, "forbidden"},
		{"staff", &auth.Context{UserID: 1, Authenticated: true, IsStaff: true}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireStaff(nil)(okHandler()).ServeHTTP(rec, requestAs(tt.ctx))
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, rec).Code)
			}
		})
	}
}
