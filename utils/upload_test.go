package utils

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImageRequest(t *testing.T, fields map[string]string, imageName string) (*httptest.ResponseRecorder, *bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		part, err := mw.CreateFormFile(ImageField, imageName)
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return httptest.NewRecorder(), body, mw.FormDataContentType()
}

func TestSaveImageWritesFile(t *testing.T) {
	dir := t.TempDir()
	w, body, contentType := newImageRequest(t, map[string]string{"title": "X"}, "cover.png")
	r := httptest.NewRequest("POST", "/api/books", body)
	r.Header.Set("Content-Type", contentType)

	relPath, herr := SaveImage(r, w, dir, 1<<20)
	require.Nil(t, herr)
	require.NotEmpty(t, relPath)

	assert.True(t, strings.HasPrefix(relPath, filepath.ToSlash(dir)+"/"), relPath)
	assert.True(t, strings.HasSuffix(relPath, ".png"), relPath)

	// "<epochMillis>-<random>.png"
	name := filepath.Base(relPath)
	assert.Regexp(t, regexp.MustCompile(`^\d{13}-\d+\.png$`), name)

	data, err := os.ReadFile(filepath.FromSlash(relPath))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	// Text fields stay readable after the multipart parse.
	assert.Equal(t, "X", r.FormValue("title"))
}

func TestSaveImageOptional(t *testing.T) {
	dir := t.TempDir()
	w, body, contentType := newImageRequest(t, map[string]string{"title": "X"}, "")
	r := httptest.NewRequest("POST", "/api/books", body)
	r.Header.Set("Content-Type", contentType)

	relPath, herr := SaveImage(r, w, dir, 1<<20)
	require.Nil(t, herr)
	assert.Empty(t, relPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveImageRejectsNonMultipart(t *testing.T) {
	dir := t.TempDir()
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/books", strings.NewReader(`{"title":"X"}`))
	r.Header.Set("Content-Type", "application/json")

	_, herr := SaveImage(r, w, dir, 1<<20)
	require.NotNil(t, herr)
}

func TestUniqueNamesDiffer(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := uniqueName("cover.jpg")
		assert.False(t, seen[n], n)
		seen[n] = true
		assert.True(t, strings.HasSuffix(n, ".jpg"))
	}
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.png")
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))

	RemoveFile(nil, filepath.ToSlash(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing file or empty path must be harmless.
	RemoveFile(nil, filepath.ToSlash(path))
	RemoveFile(nil, "")
}
