package media

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/yatube/internal/core/validation"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func newTestStorage(maxBytes int64) (*Storage, afero.Fs) {
	fs := afero.NewMemMapFs()
	return NewStorage(fs, maxBytes), fs
}

func TestSave_StoresImage(t *testing.T) {
	s, fs := newTestStorage(0)

	name, err := s.Save(DirPosts, bytes.NewReader(smallGIF))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(name, "posts/"))
	assert.True(t, strings.HasSuffix(name, ".gif"))

	data, err := afero.ReadFile(fs, "/"+name)
	require.NoError(t, err)
	assert.Equal(t, smallGIF, data)
	assert.True(t, s.Exists(name))
}

func TestSave_RejectsNonImage(t *testing.T) {
	s, _ := newTestStorage(0)

	_, err := s.Save(DirPosts, strings.NewReader("just some text"))
	assert.ErrorIs(t, err, validation.ErrImageUnsupported)
}

func TestSave_RejectsOversized(t *testing.T) {
	s, _ := newTestStorage(int64(len(smallGIF) - 1))

	_, err := s.Save(DirAvatars, bytes.NewReader(smallGIF))
	assert.ErrorIs(t, err, validation.ErrImageTooLarge)
}

func TestDelete(t *testing.T) {
	s, _ := newTestStorage(0)
	name, err := s.Save(DirPosts, bytes.NewReader(smallGIF))
	require.NoError(t, err)

	require.NoError(t, s.Delete(name))
	assert.False(t, s.Exists(name))

	assert.NoError(t, s.Delete(name))
	assert.NoError(t, s.Delete(""))
	assert.ErrorIs(t, s.Delete("../etc/passwd"), ErrInvalidPath)
}

func TestHandler_ServesFile(t *testing.T) {
	s, _ := newTestStorage(0)
	name, err := s.Save(DirPosts, bytes.NewReader(smallGIF))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/"+name, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, smallGIF, rec.Body.Bytes())
}

func TestURL(t *testing.T) {
	assert.Equal(t, "", URL(""))
	assert.Equal(t, "/media/posts/a.png", URL("posts/a.png"))
}
