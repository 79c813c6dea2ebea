package pagecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(time.Hour)
	defer m.Close()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "GET /")
	require.NoError(t, err)
	assert.False(t, ok)

	body := []byte("<html>index</html>")
	require.NoError(t, m.Set(ctx, "GET /", Entry{Status: 200, ContentType: "text/html", Body: body}, time.Minute))
	body[0] = 'X'

	entry, ok, err := m.Get(ctx, "GET /")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 200, entry.Status)
	assert.Equal(t, "<html>index</html>", string(entry.Body))
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(time.Hour)
	defer m.Close()
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }
	require.NoError(t, m.Set(ctx, "k", Entry{Status: 200}, 20*time.Second))

	m.now = func() time.Time { return now.Add(19 * time.Second) }
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	m.now = func() time.Time { return now.Add(20 * time.Second) }
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)

	m.evictExpired()
	assert.Zero(t, m.Len())
}

func TestMemory_ZeroTTLIsNotStored(t *testing.T) {
	m := NewMemory(time.Hour)
	defer m.Close()

	require.NoError(t, m.Set(context.Background(), "k", Entry{Status: 200}, 0))
	assert.Zero(t, m.Len())
}

func TestMemory_Clear(t *testing.T) {
	m := NewMemory(time.Hour)
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", Entry{Status: 200}, time.Minute))
	require.NoError(t, m.Set(ctx, "b", Entry{Status: 200}, time.Minute))
	require.NoError(t, m.Clear(ctx))

	assert.Zero(t, m.Len())
}

func TestMemory_JanitorEvicts(t *testing.T) {
	m := NewMemory(5 * time.Millisecond)
	defer m.Close()

	require.NoError(t, m.Set(context.Background(), "k", Entry{Status: 200}, time.Millisecond))

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemory_CloseIsIdempotent(t *testing.T) {
	m := NewMemory(time.Hour)
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

func TestNew_Backends(t *testing.T) {
	c, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)
	require.NoError(t, c.Close())

	_, err = New(context.Background(), Config{Backend: "memcached"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
