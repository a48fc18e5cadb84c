// File: internal/filestorage/service.go
package filestorage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"clinic_backend/internal/common"
	"clinic_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PublicPathPrefix is the URL prefix under which stored documents are
// referenced. Stored paths always look like "/uploads/<name>".
const PublicPathPrefix = "/uploads/"

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// Service stores uploaded documents on local disk and resolves their
// public paths back to files for download.
type Service interface {
	Save(c *gin.Context, fileHeader *multipart.FileHeader) (storedName string, publicPath string, err error)
	Resolve(publicPath string) (diskPath string, err error)
	Delete(publicPath string) error
}

type localService struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalService creates a disk-backed document store rooted at the
// configured upload directory, creating it if needed.
func NewLocalService(cfg *config.Config, logger *zap.Logger) (Service, error) {
	basePath := cfg.UploadStoragePath
	if basePath == "" {
		basePath = "./uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", basePath, err)
	}
	return &localService{basePath: basePath, logger: logger.Named("filestorage")}, nil
}

// Save writes the uploaded file under a random name, preserving only the
// extension, and returns the stored name and its public path.
func (s *localService) Save(c *gin.Context, fileHeader *multipart.FileHeader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return "", "", common.ErrBadRequest.WithDetails(
			fmt.Sprintf("Unsupported file type %q. Allowed: pdf, png, jpg, jpeg, webp.", ext))
	}

	storedName := uuid.NewString() + ext
	diskPath := filepath.Join(s.basePath, storedName)
	if err := c.SaveUploadedFile(fileHeader, diskPath); err != nil {
		s.logger.Error("Failed to save uploaded file", zap.Error(err), zap.String("path", diskPath))
		return "", "", fmt.Errorf("saving uploaded file: %w", err)
	}

	s.logger.Debug("Stored uploaded file",
		zap.String("original", fileHeader.Filename),
		zap.String("stored", storedName))
	return storedName, PublicPathPrefix + storedName, nil
}

// Resolve maps a stored public path back onto disk. Only paths under the
// public prefix are honored, and only their base name is used, so a stored
// value can never escape the upload directory.
func (s *localService) Resolve(publicPath string) (string, error) {
	if !strings.HasPrefix(publicPath, PublicPathPrefix) {
		return "", common.ErrInvalidState.WithDetails("Document path is not downloadable.")
	}
	name := filepath.Base(publicPath)
	if name == "." || name == "/" || name == ".." {
		return "", common.ErrInvalidState.WithDetails("Document path is not downloadable.")
	}

	diskPath := filepath.Join(s.basePath, name)
	if _, err := os.Stat(diskPath); err != nil {
		if os.IsNotExist(err) {
			return "", common.ErrNotFound.WithDetails("Document file not found on server.")
		}
		return "", fmt.Errorf("checking document file: %w", err)
	}
	return diskPath, nil
}

// Delete removes a stored document. A missing file is not an error.
func (s *localService) Delete(publicPath string) error {
	if !strings.HasPrefix(publicPath, PublicPathPrefix) {
		return nil
	}
	diskPath := filepath.Join(s.basePath, filepath.Base(publicPath))
	if err := os.Remove(diskPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting document file: %w", err)
	}
	return nil
}
