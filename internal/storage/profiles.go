package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/noorportal/account-service/internal/models"
)

// Profiles — контракт репозитория анкет.
type Profiles interface {
	// CreateProfile создаёт новую анкету.
	CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	// ProfileByID возвращает анкету по user_id.
	ProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	// DeleteProfile удаляет анкету. Используется компенсацией неудавшейся
	// регистрации; отсутствие записи ошибкой не считается.
	DeleteProfile(ctx context.Context, userID uuid.UUID) error
}

// ProfilesStorage — верхнеуровневый интерфейс хранилища анкет.
type ProfilesStorage interface {
	Profiles
	Close()
}
