package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-portal-api/pkg/config"
)

func TestLocalStorageUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "/files/")
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "announcements/a.pdf", strings.NewReader("routine"), 7, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/files/announcements/a.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "announcements", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "routine", string(data))

	require.NoError(t, store.Delete(context.Background(), "announcements/a.pdf"))
	_, err = os.Stat(filepath.Join(dir, "announcements", "a.pdf"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(context.Background(), "announcements/a.pdf"))
}

func TestLocalStorageKeepsKeysInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "../../escape.txt", strings.NewReader("x"), 1, "text/plain")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.NoError(t, err)
}

func TestLocalStorageUploadHonoursCancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Upload(ctx, "a.txt", strings.NewReader("x"), 1, "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := ObjectKey("announcements", "Routine Spring.PDF")
	assert.True(t, strings.HasPrefix(key, "announcements/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotEqual(t, key, ObjectKey("announcements", "Routine Spring.PDF"))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
