package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_MissingDocumentIsNotFound(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load(context.Background(), DocMessages)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_SaveReplacesWholeDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, Document{Name: DocMessages, Body: []byte(`[{"id":"1"},{"id":"2"}]`)}))
	require.NoError(t, s.Save(ctx, Document{Name: DocMessages, Body: []byte(`[]`)}))

	data, err := s.Load(ctx, DocMessages)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	onDisk, err := os.ReadFile(filepath.Join(dir, "messages.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(onDisk))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_SavesMultipleDocuments(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx,
		Document{Name: DocArchived, Body: []byte(`["a"]`)},
		Document{Name: DocMessages, Body: []byte(`["m"]`)},
	))

	archived, err := s.Load(ctx, DocArchived)
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(archived))

	active, err := s.Load(ctx, DocMessages)
	require.NoError(t, err)
	assert.Equal(t, `["m"]`, string(active))
}

func TestFileStore_UnreadableDocumentIsError(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	// A directory where the file should be cannot be read as a document
	require.NoError(t, os.Mkdir(s.Path(DocMessages), 0o755))

	_, err = s.Load(context.Background(), DocMessages)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStore_Ping(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
	assert.Equal(t, "file", s.Name())

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, s.Ping(context.Background()))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	body := []byte(`[1]`)
	require.NoError(t, s.Save(ctx, Document{Name: DocMessages, Body: body}))
	body[1] = '9'

	got, err := s.Load(ctx, DocMessages)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))

	_, err = s.Load(ctx, DocArchived)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: "file", DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "file", s.Name())

	s, err = Open(ctx, Options{Backend: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Name())

	_, err = Open(ctx, Options{Backend: "redis"})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: "postgres"})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: "dynamo"})
	assert.Error(t, err)
}
