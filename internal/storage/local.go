package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/timesheet-app/timesheet-api/internal/constants"
)

var (
	ErrFileTooLarge  = errors.New("attachment exceeds the maximum allowed size")
	ErrEmptyFilename = errors.New("attachment has no filename")
)

// LocalStore saves uploaded task attachments on the local filesystem.
// Files are stored under root/uploads/tasks with a random prefix so
// that uploads with the same name never collide.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Save writes the uploaded file to disk and returns the path to store
// on the task, relative to the storage root.
func (s *LocalStore) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Filename == "" {
		return "", ErrEmptyFilename
	}
	if file.Size > constants.MaxAttachmentSize {
		return "", ErrFileTooLarge
	}

	name := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(file.Filename))
	relPath := filepath.Join(constants.UploadDir, name)
	absPath := filepath.Join(s.root, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := c.SaveUploadedFile(file, absPath); err != nil {
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}
	return relPath, nil
}

// Remove deletes a previously stored attachment. A missing file is not
// an error; the path on the task is the source of truth.
func (s *LocalStore) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, relPath))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Resolve returns the absolute path for a stored attachment.
func (s *LocalStore) Resolve(relPath string) string {
	return filepath.Join(s.root, relPath)
}
