package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/noorportal/account-service/internal/models"
	"github.com/noorportal/account-service/internal/storage"
	"github.com/noorportal/account-service/pkg/log"
)

// ProfileByID возвращает анкету по идентификатору пользователя.
//
// Валидация:
//   - userID не должен быть нулевым (uuid.Nil) — иначе ErrNotFound.
//
// Поведение:
//   - при отсутствии записи возвращает ErrNotFound;
//   - ошибки стораджа/БД/контекста маппятся в ErrInternal.
func (s *Service) ProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "service/profile/ProfileByID"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if userID == uuid.Nil {
		lg.Warn("empty user_id")

		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	result, err := s.profiles.ProfileByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("profile not found")

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on ProfileByID", "err", err.Error())

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return result, nil
}
