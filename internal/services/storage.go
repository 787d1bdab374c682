package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type StorageService interface {
	SaveTemp(file *multipart.FileHeader) (*TempFile, error)
	EnsureUploadDir() error
}

// TempFile is an upload copied to disk for the duration of one request.
type TempFile struct {
	Path         string
	OriginalName string
	Size         int64
	removed      bool
}

// Remove deletes the file. Safe to call more than once.
func (f *TempFile) Remove() error {
	if f == nil || f.removed {
		return nil
	}
	f.removed = true
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete temp file: %w", err)
	}
	return nil
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) SaveTemp(file *multipart.FileHeader) (*TempFile, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))

	// Generate the unique filename
	uniqueFilename := fmt.Sprintf("resume_%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	tmp := &TempFile{Path: filePath, OriginalName: file.Filename}

	n, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = tmp.Remove()
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	tmp.Size = n

	return tmp, nil
}
