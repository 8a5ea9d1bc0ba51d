package storage

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
)

var (
	// ErrInvalidFile — нарушены ограничения загрузки (тип/размер).
	ErrInvalidFile = errors.New("invalid file")
)

// Blobs — контракт загрузки изображений профиля.
type Blobs interface {
	// UploadImage загружает изображение в бакет и возвращает публичный URL.
	// Внутри — валидация contentType и size по конфигу.
	UploadImage(ctx context.Context, userID uuid.UUID, r io.Reader, contentType string, size int64) (publicURL string, err error)
}

// BlobStorage — алиас-обёртка для внедрения зависимости.
type BlobStorage interface {
	Blobs
}
