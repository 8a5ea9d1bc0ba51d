// service содержит бизнес-логику account-сервиса:
// - регистрацию с компенсирующим откатом (signup-сага);
// - аутентификацию (login/logout) и выпуск/проверку токенов сессии;
// - разрешение доступа к защищённым разделам (authorization gate);
// - чтение анкеты пользователя.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданные хранилища потокобезопасны.
//   - Ошибки возвращаются сентинелами и далее маппятся транспортом
//     на HTTP-статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/noorportal/account-service/internal/config"
	"github.com/noorportal/account-service/internal/session"
	"github.com/noorportal/account-service/internal/storage"
)

var (
	// ErrValidation — форма регистрации не прошла локальную проверку
	// (пустое обязательное поле, некорректная дата рождения).
	// Никаких внешних вызовов при этом не происходит.
	// Транспорт: 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrUpload — загрузка изображения профиля не удалась или превысила таймаут.
	// Регистрация откатывается. Транспорт: 422 Unprocessable Entity.
	ErrUpload = errors.New("image upload failed")

	// ErrProfileWrite — запись анкеты не удалась или превысила таймаут.
	// Регистрация откатывается. Транспорт: 503 Service Unavailable.
	ErrProfileWrite = errors.New("profile write failed")

	// ErrEmailTaken — e-mail уже занят другим пользователем.
	// Транспорт: 409 Conflict.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidEmail — e-mail имеет некорректный формат.
	// Транспорт: 400 Bad Request.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политикам сложности.
	// Транспорт: 400 Bad Request.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой.
	// Транспорт: 400 Bad Request.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Намеренно не различаем эти случаи (user enumeration).
	// Транспорт: 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен сессии некорректен по формату/подписи.
	// Транспорт: 401 Unauthorized.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк.
	// Транспорт: 401 Unauthorized.
	ErrTokenExpired = errors.New("token expired")

	// ErrNotFound — сущность не найдена. Транспорт: 404 Not Found.
	ErrNotFound = errors.New("not found")

	// ErrInternal — внутренняя ошибка сервиса. Транспорт: 500.
	ErrInternal = errors.New("internal")
)

// Service описывает бизнес-логику account-сервиса.
type Service struct {
	cfg        *config.Config
	identities storage.IdentitiesStorage
	profiles   storage.ProfilesStorage
	blobs      storage.BlobStorage
	sessions   *session.Hub
}

// New создаёт новый экземпляр Service.
func New(identities storage.IdentitiesStorage, profiles storage.ProfilesStorage, blobs storage.BlobStorage, sessions *session.Hub, cfg *config.Config) *Service {
	return &Service{
		cfg:        cfg,
		identities: identities,
		profiles:   profiles,
		blobs:      blobs,
		sessions:   sessions,
	}
}

// Sessions возвращает hub текущей сессии (для подписки транспорта/гейта).
func (s *Service) Sessions() *session.Hub {
	return s.sessions
}
