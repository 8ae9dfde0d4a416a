package storage

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
}

func TestLocalImageStore_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalImageStore(root, "/media")
	ctx := context.Background()

	ref, err := store.Save(ctx, pngDataURL())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "recipes/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))
	assert.Equal(t, "/media/"+ref, store.URL(ref))

	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is not an error
	assert.NoError(t, store.Delete(ctx, ref))
}

func TestLocalImageStore_RawBase64(t *testing.T) {
	store := NewLocalImageStore(t.TempDir(), "/media/")

	ref, err := store.Save(context.Background(), base64.StdEncoding.EncodeToString(pngHeader))

	require.NoError(t, err)
	assert.NotEmpty(t, ref)
}

func TestLocalImageStore_RejectsInvalidPayloads(t *testing.T) {
	store := NewLocalImageStore(t.TempDir(), "/media/")

	testCases := []struct {
		name    string
		payload string
	}{
		{name: "empty", payload: ""},
		{name: "not base64", payload: "data:image/png;base64,@@@"},
		{name: "data url without base64 marker", payload: "data:image/png," + base64.StdEncoding.EncodeToString(pngHeader)},
		{name: "not an image", payload: "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello world"))},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(context.Background(), tt.payload)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestLocalImageStore_DeleteOutsideMediaDir(t *testing.T) {
	store := NewLocalImageStore(t.TempDir(), "/media/")

	assert.Error(t, store.Delete(context.Background(), "../etc/passwd"))
	assert.NoError(t, store.Delete(context.Background(), ""))
	assert.Equal(t, "", store.URL(""))
}
