package fs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/duplex/schema"
)

func requestWith(t *testing.T, method string, payload any) *schema.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &schema.Request{Id: 1, Method: method, Data: data}
}

func TestService_TextRoundTrip(t *testing.T) {
	service := New(&Config{BaseURL: t.TempDir()})
	ctx := context.Background()

	_, err := service.Put(ctx, requestWith(t, schema.MethodPut, &Upload{URL: "notes/hello.txt", Text: "hello duplex"}))
	require.NoError(t, err)

	value, err := service.Get(ctx, requestWith(t, schema.MethodGet, "notes/hello.txt"))
	require.NoError(t, err)
	content, ok := value.(*Content)
	require.True(t, ok)
	assert.Equal(t, "hello duplex", content.Text)
	assert.Empty(t, content.Blob)
	assert.Contains(t, content.MimeType, "text/plain")

	value, err = service.Head(ctx, requestWith(t, schema.MethodHead, &Target{URL: "notes/hello.txt"}))
	require.NoError(t, err)
	entry, ok := value.(*Entry)
	require.True(t, ok)
	assert.Equal(t, "hello.txt", entry.Name)
	assert.Equal(t, int64(len("hello duplex")), entry.Size)
	assert.False(t, entry.Dir)

	value, err = service.Get(ctx, requestWith(t, schema.MethodGet, "notes"))
	require.NoError(t, err)
	entries, ok := value.([]*Entry)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello.txt", entries[0].Name)

	_, err = service.Delete(ctx, requestWith(t, schema.MethodDelete, "notes/hello.txt"))
	require.NoError(t, err)
	_, err = service.Get(ctx, requestWith(t, schema.MethodGet, "notes/hello.txt"))
	assert.Error(t, err)
}

func TestService_Blob(t *testing.T) {
	service := New(&Config{BaseURL: t.TempDir()})
	ctx := context.Background()

	binary := []byte{0x00, 0x01, 0xff, 0x10, 0x80, 0x00, 0x01, 0xff, 0x10, 0x80}
	encoded := base64.StdEncoding.EncodeToString(binary)
	_, err := service.Put(ctx, requestWith(t, schema.MethodPut, &Upload{URL: "data.bin", Blob: encoded}))
	require.NoError(t, err)

	value, err := service.Get(ctx, requestWith(t, schema.MethodGet, "data.bin"))
	require.NoError(t, err)
	content, ok := value.(*Content)
	require.True(t, ok)
	assert.Equal(t, encoded, content.Blob)
	assert.Empty(t, content.Text)

	_, err = service.Put(ctx, requestWith(t, schema.MethodPut, &Upload{URL: "broken.bin", Blob: "%%%"}))
	assert.Error(t, err)
}

func TestService_RefusesTraversal(t *testing.T) {
	service := New(&Config{BaseURL: t.TempDir()})
	ctx := context.Background()

	_, err := service.Get(ctx, requestWith(t, schema.MethodGet, "../etc/passwd"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes base location")
}

func TestService_Handlers(t *testing.T) {
	service := New(&Config{BaseURL: t.TempDir()})
	handlers := service.Handlers()
	for _, method := range []string{schema.MethodGet, schema.MethodHead, schema.MethodPut, schema.MethodDelete} {
		assert.NotNil(t, handlers[method], method)
	}
}
