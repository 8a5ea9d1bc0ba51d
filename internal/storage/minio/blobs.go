package minio

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/noorportal/account-service/internal/storage"
)

// UploadImage загружает изображение профиля в бакет и возвращает публичный URL.
// Валидирует contentType и size согласно конфигу, формирует ключ вида
// "profile-pictures/<userID>/<uuid>.<ext>".
// Если PublicBaseURL не задан, публичный URL строится от endpoint и бакета.
func (s *BlobStorage) UploadImage(ctx context.Context, userID uuid.UUID, r io.Reader, contentType string, size int64) (string, error) {
	const op = "storage/minio/blobs/UploadImage"

	if size <= 0 || size > s.cfg.Avatar.MaxSizeBytes {
		return "", storage.ErrInvalidFile
	}

	if !isAllowedContentType(s.cfg.Avatar.AllowedContentTypes, contentType) {
		return "", storage.ErrInvalidFile
	}

	var ext string
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	default:
		ext = ""
	}

	// Генерация ключа вида: profile-pictures/<userID>/<uuid>.<ext>
	key := path.Join("profile-pictures", userID.String(), uuid.NewString()+ext)

	if _, err := s.client.PutObject(ctx, s.cfg.S3.Bucket, key, r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.publicURL(key), nil
}

// publicURL строит публичный URL объекта по ключу.
func (s *BlobStorage) publicURL(key string) string {
	if s.cfg.S3.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.S3.PublicBaseURL, "/") + "/" + key
	}

	endpoint := strings.TrimRight(s.cfg.S3.Endpoint, "/")
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	return endpoint + "/" + s.cfg.S3.Bucket + "/" + key
}

// isAllowedContentType проверяет, что тип содержимого входит в allow-list.
func isAllowedContentType(allow []string, contentType string) bool {
	for _, a := range allow {
		if a == contentType {
			return true
		}
	}

	return false
}
