package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PublishAndRemove(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url, err := store.Publish(context.Background(), "1700000000-abc-report.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000-abc-report.pdf", url)

	data, err := os.ReadFile(filepath.Join(store.Dir(), "1700000000-abc-report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, store.Remove(context.Background(), "1700000000-abc-report.pdf"))
	_, err = os.Stat(filepath.Join(store.Dir(), "1700000000-abc-report.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_RemoveMissingIsNoop(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Remove(context.Background(), "never-published.pdf"))
}

func TestLocalStore_StripsPathComponents(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url, err := store.Publish(context.Background(), "../../etc/passwd", strings.NewReader("x"), 1, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/passwd", url)
}
