package media

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"incubator/portal/handlers/auth"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	maxFileSize = 10 << 20 // 10 MB
)

// UploadDir is the directory served under /uploads/.
var UploadDir = "uploads"

var (
	ErrNoFile     = errors.New("No file uploaded")
	ErrTooLarge   = errors.New("File too large. Maximum size is 10MB")
	ErrFileType   = errors.New("Invalid file type")
	ImageTypes    = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	DocumentTypes = append([]string{"application/pdf", "application/zip", "text/plain",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}, ImageTypes...)
)

// UploadResponse represents the response for a successful upload
type UploadResponse struct {
	URL string `json:"url"`
}

// Save stores the multipart "file" field under UploadDir/subdir with a random
// name and returns its public URL (relative, /uploads/...). The content type
// is sniffed from the bytes, not taken from the client.
func Save(r *http.Request, subdir string, allowed []string) (string, error) {
	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		return "", ErrTooLarge
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", ErrNoFile
	}
	defer file.Close()
	if header.Size > maxFileSize {
		return "", ErrTooLarge
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("detecting file type: %w", err)
	}
	if !isAny(mtype, allowed) {
		return "", fmt.Errorf("%w: %s", ErrFileType, mtype.String())
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	filename := uuid.NewString() + mtype.Extension()
	dir := filepath.Join(UploadDir, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("saving file: %w", err)
	}
	return path.Join("/uploads", subdir, filename), nil
}

func isAny(mtype *mimetype.MIME, allowed []string) bool {
	for _, t := range allowed {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}

// WriteUploadError maps Save errors onto HTTP statuses.
func WriteUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoFile), errors.Is(err, ErrTooLarge):
		auth.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrFileType):
		auth.WriteError(w, http.StatusUnsupportedMediaType, err.Error())
	default:
		log.Printf("Error saving upload: %v", err)
		auth.WriteError(w, http.StatusInternalServerError, "Failed to save file")
	}
}

// UploadHandler stores one file and answers {"url": ...}
// Used by: /api/landing-page/images, /api/v1/news/upload
func UploadHandler(subdir string, allowed []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := Save(r, subdir, allowed)
		if err != nil {
			WriteUploadError(w, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, UploadResponse{URL: url})
	}
}
