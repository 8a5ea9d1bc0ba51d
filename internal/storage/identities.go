// storage содержит контракты слоя хранилищ account-сервиса.
//
// identities.go — работа с аутентификационными сущностями в БД
// (создание/чтение/обновление отображаемых атрибутов/удаление при откате).
// profiles.go — работа с анкетами пользователей в БД.
// blobs.go — контракт загрузки изображений профиля в S3/MinIO.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/noorportal/account-service/internal/models"
)

var (
	// ErrNotFound — сущность не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — запись с тем же первичным ключом/уникальным полем уже существует.
	ErrAlreadyExists = errors.New("already exists")
)

// IdentityUpdate — обновление отображаемых атрибутов identity.
// Параметры задаются pointer-полями: только непустые указатели обновляются в БД.
type IdentityUpdate struct {
	DisplayName *string
	PhotoURL    *string
}

// Identities — контракт репозитория аутентификационных сущностей.
type Identities interface {
	// CreateIdentity создаёт новую identity.
	CreateIdentity(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	// IdentityByID возвращает identity по id.
	IdentityByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	// IdentityByEmail возвращает identity по нормализованному email.
	IdentityByEmail(ctx context.Context, email string) (*models.Identity, error)
	// UpdateIdentity обновляет отображаемые атрибуты (display name / photo URL).
	// Реализация должна обновить updated_at.
	UpdateIdentity(ctx context.Context, id uuid.UUID, update IdentityUpdate) (*models.Identity, error)
	// DeleteIdentity удаляет identity. Используется только компенсацией
	// неудавшейся регистрации; отсутствие записи ошибкой не считается.
	DeleteIdentity(ctx context.Context, id uuid.UUID) error
}

// IdentitiesStorage — верхнеуровневый интерфейс хранилища identity.
type IdentitiesStorage interface {
	Identities
	Close()
}
