package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/yigit/abroadcrm/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL the root directory is served under
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath returns the storage root, used to serve files statically
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// resolve maps a key to a path inside basePath, rejecting keys that escape it
func (ls *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid file key: %s", key)
	}
	return filepath.Join(ls.basePath, clean), nil
}

// Save copies the upload into basePath/dir under a unique name
func (ls *LocalStorage) Save(_ context.Context, fileHeader *multipart.FileHeader, dir string) (string, error) {
	if fileHeader == nil {
		return "", errors.New("no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	key := newKey(dir, fileHeader.Filename)
	dstPath, err := ls.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("key", key).Msg("File saved successfully")
	return key, nil
}

// Delete removes a stored file. Missing files are ignored.
func (ls *LocalStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}

	physicalPath, err := ls.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// URL joins the base URL and the key
func (ls *LocalStorage) URL(_ context.Context, key string) (string, error) {
	if ls.baseURL == "" {
		return "/" + strings.TrimLeft(key, "/"), nil
	}
	return ls.baseURL + "/" + strings.TrimLeft(key, "/"), nil
}
