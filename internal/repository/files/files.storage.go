// FilePath: internal/repository/files/files.storage.go
package files

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const (
	defaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	defaultPermissions = 0755
	defaultDateFormat  = "20060102_150405"
)

// FileConfig holds configuration for the file storage
type FileConfig struct {
	BasePath    string
	MaxFileSize int64
}

// FileRepo keeps blob payloads below BasePath, one directory per device.
type FileRepo struct {
	config FileConfig
}

// NewFileRepository creates a new file storage repository
func NewFileRepository(config FileConfig) (*FileRepo, error) {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = defaultMaxFileSize
	}
	if err := createDirectoryIfNotExists(config.BasePath); err != nil {
		return nil, err
	}
	return &FileRepo{config: config}, nil
}

// Store writes the payload of blob and returns its path relative to BasePath.
// A partial file is removed when the copy fails or exceeds the size limit.
func (r *FileRepo) Store(ctx context.Context, blob *models.Blob, src io.Reader) (string, error) {
	if blob.FileSize > r.config.MaxFileSize {
		return "", errors.NewValidationError("file size exceeds maximum allowed size", nil)
	}

	fileName, err := generateFilePath(blob)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(r.config.BasePath, fileName)
	if err := createDirectoryIfNotExists(filepath.Dir(fullPath)); err != nil {
		return "", err
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", errors.NewInternalError("failed to create destination file", err)
	}

	written, err := io.Copy(dst, io.LimitReader(src, r.config.MaxFileSize+1))
	closeErr := dst.Close()
	switch {
	case err != nil:
		os.Remove(fullPath)
		return "", errors.NewInternalError("failed to copy file", err)
	case written > r.config.MaxFileSize:
		os.Remove(fullPath)
		return "", errors.NewValidationError("file size exceeds maximum allowed size", nil)
	case closeErr != nil:
		os.Remove(fullPath)
		return "", errors.NewInternalError("failed to close file", closeErr)
	}

	nuts.L.Infof("[FileRepo] Stored file: %s (%d bytes)", fileName, written)
	return fileName, nil
}

func (r *FileRepo) Open(ctx context.Context, fileName string) (io.ReadCloser, error) {
	fullPath, err := r.resolve(fileName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewNotFoundError("file not found", err)
		}
		return nil, errors.NewInternalError("failed to open file", err)
	}
	return f, nil
}

// Delete removes a stored payload. A file that is already gone is not an error.
func (r *FileRepo) Delete(ctx context.Context, fileName string) error {
	fullPath, err := r.resolve(fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return errors.NewInternalError("failed to delete file", err)
	}
	return nil
}

func (r *FileRepo) resolve(fileName string) (string, error) {
	clean := filepath.Clean(fileName)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.NewValidationError("invalid file name", nil)
	}
	return filepath.Join(r.config.BasePath, clean), nil
}

func generateFilePath(blob *models.Blob) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(blob.Extension, "."))
	if ext == "" || strings.ContainsAny(ext, `/\.`) {
		return "", errors.NewValidationError("unsupported file extension", nil)
	}

	filename := fmt.Sprintf("%s_%d.%s", blob.DataTime.UTC().Format(defaultDateFormat), blob.ID, ext)
	return filepath.Join(strconv.FormatInt(blob.DeviceID, 10), filename), nil
}

func createDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err := os.MkdirAll(path, defaultPermissions)
		if err != nil {
			return errors.NewInternalError("failed to create directory", err)
		}
	}
	return nil
}
