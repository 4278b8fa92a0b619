package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadealahmad/anonymous-messages/models"
)

// pngBytes is a minimal valid PNG signature plus filler, enough for content
// sniffing to identify it.
func pngBytes(size int) []byte {
	sig := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	out := make([]byte, size)
	copy(out, sig)
	return out
}

// fileHeaders round-trips files through a real multipart body so the
// headers behave exactly like Gin would hand them to us.
func fileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["images"]
}

func TestUploadStore(t *testing.T) {
	t.Run("stores a valid image", func(t *testing.T) {
		db := openTestDB(t)
		dir := t.TempDir()
		store := NewUploadStore(db, dir, 3, 2, []string{"image/png"})

		errs := store.ProcessAll(1, fileHeaders(t, map[string][]byte{"photo.png": pngBytes(256)}))
		assert.Empty(t, errs)

		var atts []models.Attachment
		require.NoError(t, db.Where("message_id = ?", 1).Find(&atts).Error)
		require.Len(t, atts, 1)
		assert.Equal(t, "photo.png", atts[0].FileName)
		assert.Equal(t, "image/png", atts[0].MimeType)
		assert.EqualValues(t, 256, atts[0].FileSize)

		_, err := os.Stat(atts[0].FilePath)
		assert.NoError(t, err)
	})

	t.Run("rejects disallowed content regardless of extension", func(t *testing.T) {
		db := openTestDB(t)
		store := NewUploadStore(db, t.TempDir(), 3, 2, []string{"image/png"})

		errs := store.ProcessAll(1, fileHeaders(t, map[string][]byte{"script.png": []byte("#!/bin/sh\nrm -rf /\n")}))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "invalid file type")

		var count int64
		require.NoError(t, db.Model(&models.Attachment{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("rejects the whole batch above the file limit", func(t *testing.T) {
		db := openTestDB(t)
		store := NewUploadStore(db, t.TempDir(), 1, 2, []string{"image/png"})

		errs := store.ProcessAll(1, fileHeaders(t, map[string][]byte{
			"a.png": pngBytes(64),
			"b.png": pngBytes(64),
		}))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "too many files")

		var count int64
		require.NoError(t, db.Model(&models.Attachment{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		db := openTestDB(t)
		store := NewUploadStore(db, t.TempDir(), 3, 1, []string{"image/png"})

		errs := store.ProcessAll(1, fileHeaders(t, map[string][]byte{"big.png": pngBytes(1<<20 + 1)}))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "file too large")
	})

	t.Run("one bad file does not sink the batch", func(t *testing.T) {
		db := openTestDB(t)
		store := NewUploadStore(db, t.TempDir(), 3, 2, []string{"image/png"})

		errs := store.ProcessAll(1, fileHeaders(t, map[string][]byte{
			"good.png": pngBytes(128),
			"bad.png":  []byte("plain text pretending"),
		}))
		assert.Len(t, errs, 1)

		var count int64
		require.NoError(t, db.Model(&models.Attachment{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("delete removes rows and files", func(t *testing.T) {
		db := openTestDB(t)
		store := NewUploadStore(db, t.TempDir(), 3, 2, []string{"image/png"})

		require.Empty(t, store.ProcessAll(7, fileHeaders(t, map[string][]byte{"photo.png": pngBytes(128)})))

		var att models.Attachment
		require.NoError(t, db.Where("message_id = ?", 7).First(&att).Error)

		require.NoError(t, store.DeleteForMessage(7))

		var count int64
		require.NoError(t, db.Model(&models.Attachment{}).Where("message_id = ?", 7).Count(&count).Error)
		assert.Zero(t, count)
		_, err := os.Stat(att.FilePath)
		assert.True(t, os.IsNotExist(err))
	})
}
