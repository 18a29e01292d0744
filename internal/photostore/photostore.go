// Package photostore keeps visit photos outside the record store. Journey
// events hold only the storage key returned by Save.
package photostore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// NewKey builds a unique storage key grouped under prefix.
func NewKey(prefix, mimeType string) string {
	return fmt.Sprintf("%s_%s%s", prefix, uuid.NewString(), MimeTypeToExt(mimeType))
}

func MimeTypeToExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func ExtToMimeType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
