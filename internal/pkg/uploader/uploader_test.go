package uploader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"poster_shop/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is the 8-byte PNG signature followed by an IHDR chunk start.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestDetectImage(t *testing.T) {
	t.Run("png accepted", func(t *testing.T) {
		mt, err := DetectImage(bytes.NewReader(pngHeader))
		require.NoError(t, err)
		assert.Equal(t, "image/png", mt.String())
		assert.Equal(t, ".png", mt.Extension())
	})

	t.Run("jpeg accepted", func(t *testing.T) {
		jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
		mt, err := DetectImage(bytes.NewReader(jpeg))
		require.NoError(t, err)
		assert.True(t, mt.Is("image/jpeg"))
	})

	t.Run("pdf rejected", func(t *testing.T) {
		_, err := DetectImage(strings.NewReader("%PDF-1.7\n%âãÏÓ\n"))
		assert.True(t, errors.Is(err, apperr.ErrInvalidFileType))
	})

	t.Run("plain text rejected", func(t *testing.T) {
		_, err := DetectImage(strings.NewReader("hello poster"))
		assert.True(t, errors.Is(err, apperr.ErrInvalidFileType))
	})
}

func TestLocalUploader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	u, err := NewLocalUploader(dir, "http://localhost:8080/")
	require.NoError(t, err)

	url, err := u.Save(context.Background(), "abc.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/abc.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	t.Run("no overwrite", func(t *testing.T) {
		_, err := u.Save(context.Background(), "abc.png", bytes.NewReader(pngHeader), 16, "image/png")
		assert.Error(t, err)
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		_, err := u.Save(context.Background(), "../escape.png", bytes.NewReader(pngHeader), 16, "image/png")
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, u.Delete(context.Background(), "abc.png"))
		_, err := os.Stat(filepath.Join(dir, "abc.png"))
		assert.True(t, os.IsNotExist(err))

		// 已删除的对象再删不报错
		assert.NoError(t, u.Delete(context.Background(), "abc.png"))
		assert.Error(t, u.Delete(context.Background(), "../escape.png"))
	})
}
