package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/photostore"
)

// LocalPhotoStore keeps photos as flat files under basePath.
type LocalPhotoStore struct {
	basePath string
}

func NewLocalPhotoStore(basePath string) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &LocalPhotoStore{basePath: basePath}, nil
}

func (s *LocalPhotoStore) Save(ctx context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	key := photostore.NewKey(prefix, mimeType)
	filePath, err := s.safeJoin(key)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		s.discard(filePath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		s.discard(filePath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return key, nil
}

func (s *LocalPhotoStore) Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(storageKey)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("photo %s: %w", storageKey, domain.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, photostore.ExtToMimeType(filePath), nil
}

func (s *LocalPhotoStore) Delete(ctx context.Context, storageKey string) error {
	filePath, err := s.safeJoin(storageKey)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("photo %s: %w", storageKey, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalPhotoStore) discard(filePath string) {
	if err := os.Remove(filePath); err != nil {
		slog.Error("failed to remove partial photo", "path", filePath, "error", err)
	}
}

// safeJoin resolves storageKey relative to basePath and rejects directory traversal.
func (s *LocalPhotoStore) safeJoin(storageKey string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, storageKey))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt: %q", storageKey)
	}
	return absPath, nil
}
