package utils

import (
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lms-go/library-backend/httperr"
)

// ImageField is the multipart field name clients upload under.
const ImageField = "image"

// SaveImage parses the request as multipart and, when an "image" part is
// present, writes it into dir under a collision-resistant name and returns
// the relative path to store on the record ("uploads/<name>" style). The
// part is optional: a request without one returns ("", nil).
//
// Callers own the release discipline: if anything after a successful
// SaveImage fails, RemoveFile must be called with the returned path.
func SaveImage(r *http.Request, w http.ResponseWriter, dir string, maxBytes int64) (string, *httperr.Error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return "", httperr.BadRequest("something went wrong while uploading book image")
	}
	file, header, err := r.FormFile(ImageField)
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", httperr.BadRequest("something went wrong while uploading book image")
	}
	defer file.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", httperr.Internal(err)
	}
	name := uniqueName(header.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", httperr.Internal(err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(dst.Name())
		return "", httperr.Internal(err)
	}
	return filepath.ToSlash(filepath.Join(dir, name)), nil
}

// uniqueName builds "<epochMillis>-<random><ext>" preserving the original
// extension. Millisecond timestamp plus a random suffix keeps concurrent
// writers from colliding.
func uniqueName(original string) string {
	millis := time.Now().UnixMilli()
	suffix := rand.Int63n(1_000_000_000)
	return strconv.FormatInt(millis, 10) + "-" + strconv.FormatInt(suffix, 10) + filepath.Ext(original)
}

// RemoveFile deletes an uploaded file by its stored relative path. Failures
// are logged and swallowed: cleanup must never mask the original outcome.
func RemoveFile(logger *slog.Logger, relPath string) {
	if relPath == "" {
		return
	}
	if err := os.Remove(filepath.FromSlash(relPath)); err != nil && !os.IsNotExist(err) {
		if logger != nil {
			logger.Warn("failed to remove uploaded file", slog.String("path", relPath), slog.String("error", err.Error()))
		}
	}
}
