package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/noorportal/account-service/internal/models"
	"github.com/noorportal/account-service/internal/storage"
	"github.com/noorportal/account-service/pkg/log"
	"github.com/noorportal/account-service/pkg/redact"
	"golang.org/x/crypto/bcrypt"
)

// LoginUser выполняет вход по email+пароль и выпускает токен сессии.
// Неверный email, отсутствующий пользователь и неверный пароль намеренно
// неразличимы для вызывающего (ErrInvalidCredentials) — предотвращение
// перечисления пользователей. Успешный вход обновляет session hub.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*models.Identity, string, error) {
	const op = "service/auth/LoginUser"

	lg := log.From(ctx).With("op", op, "email", redact.Email(email))

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	identity, err := s.identities.IdentityByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("login failed: unknown email")

			return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("storage error on IdentityByEmail", "err", err.Error())

		return nil, "", fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		lg.Warn("login failed: password mismatch")

		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.generateAccessToken(ctx, identity)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	s.sessions.Set(identity)

	return identity, token, nil
}

// LogoutUser завершает текущую сессию.
// Токен остаётся валидным до истечения TTL — отзыва нет, срок короткий.
func (s *Service) LogoutUser(ctx context.Context) {
	const op = "service/auth/LogoutUser"

	log.From(ctx).Info("logout", "op", op)

	s.sessions.Set(nil)
}
