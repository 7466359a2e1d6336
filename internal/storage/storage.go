// Package storage provides the image-storage capability injected into the
// listing mutation handlers.
package storage

import (
	"context"
	"io"
)

// Upload is a typed view of an incoming image file.
type Upload struct {
	OriginalName string
	Reader       io.Reader
	Size         int64
}

// ImageStorage persists and removes vacation images. Save returns the
// generated filename under which the image was stored.
type ImageStorage interface {
	Save(ctx context.Context, upload Upload) (string, error)
	Remove(ctx context.Context, filename string) error
}
