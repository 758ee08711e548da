package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080/blobs/")
	require.NoError(t, err)
	return store
}

func TestPutReturnsURLAndWritesFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	url, err := store.Put(ctx, "allImages/photo.jpg", []byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/blobs/allImages/photo.jpg", url)

	data, err := os.ReadFile(filepath.Join(store.Root(), "allImages", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)
}

func TestPutOverwritesExistingObject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "profile_images/u1", []byte("old"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "profile_images/u1", []byte("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(store.Root(), "profile_images", "u1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestDeleteMissingObjectIsAnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "allImages/a.jpg", []byte("a"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "allImages/a.jpg"))
	assert.Error(t, store.Delete(ctx, "allImages/a.jpg"))
}

func TestListWalksPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, p := range []string{
		"allImages/a.jpg",
		"allImages/b.jpg",
		"users/art1/uploadedImages/a.jpg",
	} {
		_, err := store.Put(ctx, p, []byte("x"))
		require.NoError(t, err)
	}

	paths, err := store.List(ctx, "allImages")
	require.NoError(t, err)
	sort.Strings(paths)
	assert.Equal(t, []string{"allImages/a.jpg", "allImages/b.jpg"}, paths)
}

func TestListMissingPrefixIsEmpty(t *testing.T) {
	store := newTestStore(t)

	paths, err := store.List(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

// Traversal segments are cleaned away, so a hostile path stays under
// the root instead of escaping it.
func TestPathTraversalStaysUnderRoot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "../../outside.jpg", []byte("x"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(store.Root(), "outside.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(store.Root(), "..", "outside.jpg"))
	assert.True(t, os.IsNotExist(err))
}
