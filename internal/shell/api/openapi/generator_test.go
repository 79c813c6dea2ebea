package openapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testModel struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	Tags    []string  `json:"tags"`
	Parent  *int64    `json:"parent"`
	Created time.Time `json:"created"`
	Secret  string    `json:"-"`
	hidden  string
}

func TestGenerate_Resource(t *testing.T) {
	g := NewGenerator(WithTitle("Test"), WithServer("http://localhost"))
	g.RegisterResource(ResourceInfo{
		Name:           "entries",
		Model:          testModel{},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		AuthRequired:   true,
	})

	spec := g.Generate()

	assert.Equal(t, "Test", spec.Info.Title)
	require.Len(t, spec.Servers, 1)

	collection := spec.Paths.Value("/api/v1/entries")
	require.NotNil(t, collection)
	assert.NotNil(t, collection.Get)
	require.NotNil(t, collection.Post)
	assert.NotNil(t, collection.Post.Security)

	item := spec.Paths.Value("/api/v1/entries/{id}")
	require.NotNil(t, item)
	assert.NotNil(t, item.Get)
	assert.Nil(t, item.Patch)

	schema := spec.Components.Schemas["Entry"].Value
	require.NotNil(t, schema)
	assert.Contains(t, schema.Properties, "title")
	assert.Contains(t, schema.Properties, "tags")
	assert.NotContains(t, schema.Properties, "Secret")
	assert.NotContains(t, schema.Properties, "hidden")
	assert.Equal(t, "date-time", schema.Properties["created"].Value.Format)
	assert.True(t, schema.Properties["parent"].Value.Nullable)
}

func TestGenerate_Action(t *testing.T) {
	g := NewGenerator()
	g.RegisterAction(ActionInfo{
		Method:       http.MethodPost,
		Path:         "/users/{username}/follow",
		Summary:      "Follow",
		Tag:          "Follows",
		Status:       http.StatusCreated,
		AuthRequired: true,
	})
	g.RegisterAction(ActionInfo{
		Method:       http.MethodDelete,
		Path:         "/users/{username}/follow",
		Summary:      "Unfollow",
		Tag:          "Follows",
		Status:       http.StatusNoContent,
		AuthRequired: true,
	})

	item := g.Generate().Paths.Value("/api/v1/users/{username}/follow")
	require.NotNil(t, item)
	require.Len(t, item.Parameters, 1)
	assert.Equal(t, "username", item.Parameters[0].Value.Name)
	require.NotNil(t, item.Post)
	require.NotNil(t, item.Delete)
	assert.Equal(t, "postUsersUsernameFollow", item.Post.OperationID)
}

func TestGenerate_CachedUntilRegistration(t *testing.T) {
	g := NewGenerator()
	first := g.Generate()
	assert.Same(t, first, g.Generate())

	g.RegisterAction(ActionInfo{Method: http.MethodDelete, Path: "/cache", Tag: "Cache"})
	assert.NotSame(t, first, g.Generate())
	assert.Equal(t, []string{"/api/v1/cache"}, g.Paths())
}

func TestSingularize(t *testing.T) {
	assert.Equal(t, "post", singularize("posts"))
	assert.Equal(t, "category", singularize("categories"))
	assert.Equal(t, "group", singularize("groups"))
	assert.Equal(t, "Post", capitalize("post"))
}
