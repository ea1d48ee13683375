// Package upload stores user images on local disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"modhub/backend/internal/apperr"
	"modhub/backend/internal/config"
)

// multipartOverhead covers boundaries, part headers and the small text fields
// sent next to a file.
const multipartOverhead = 64 << 10

// Uploader validates images by their content and writes them under dir.
type Uploader struct {
	dir     string
	prefix  string
	maxSize int64
}

func NewUploader(dir, publicPrefix string, maxSize int64) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Uploader{dir: dir, prefix: publicPrefix, maxSize: maxSize}, nil
}

// PublicPrefix is the URL path the upload directory is served under.
func (u *Uploader) PublicPrefix() string {
	return u.prefix
}

func (u *Uploader) Dir() string {
	return u.dir
}

// BodyLimit is the largest multipart request that can still carry an acceptable file.
func (u *Uploader) BodyLimit() int64 {
	return u.maxSize + multipartOverhead
}

// Save stores the file under a random name and returns its public URL.
func (u *Uploader) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > u.maxSize {
		return "", apperr.NewUploadError("File too large", true)
	}

	src, err := fh.Open()
	if err != nil {
		return "", apperr.NewUploadError("Could not read uploaded file", false).WithCause(err)
	}
	defer src.Close()

	return u.store(src)
}

func (u *Uploader) store(src multipart.File) (string, error) {
	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", apperr.NewUploadError("Could not read uploaded file", false).WithCause(err)
	}

	ext, ok := extensionFor(mtype)
	if !ok {
		return "", apperr.NewUploadError("Only JPEG, PNG and GIF images are allowed", false)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + ext
	dstPath := filepath.Join(u.dir, name)
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dstPath, err)
	}

	n, err := io.Copy(dst, io.LimitReader(src, u.maxSize+1))
	closeErr := dst.Close()
	if err = errors.Join(err, closeErr); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("write %s: %w", dstPath, err)
	}
	if n > u.maxSize {
		os.Remove(dstPath)
		return "", apperr.NewUploadError("File too large", true)
	}

	return path.Join(u.prefix, name), nil
}

func extensionFor(mtype *mimetype.MIME) (string, bool) {
	for allowed, ext := range config.AllowedImageTypes {
		if mtype.Is(allowed) {
			return ext, true
		}
	}
	return "", false
}
