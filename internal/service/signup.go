package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/noorportal/account-service/internal/models"
	"github.com/noorportal/account-service/internal/saga"
	"github.com/noorportal/account-service/internal/storage"
	"github.com/noorportal/account-service/pkg/log"
	"github.com/noorportal/account-service/pkg/redact"
	"golang.org/x/crypto/bcrypt"
)

// ImageUpload — изображение профиля из multipart-формы регистрации.
type ImageUpload struct {
	Reader      io.Reader
	ContentType string
	Size        int64
}

// SignUpInput — форма регистрации. Все строковые поля обязательны,
// кроме Picture (изображение опционально).
type SignUpInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	DateOfBirth string // ISO-8601 дата, "2006-01-02"
	Gender      string
	MotherName  string
	FatherName  string
	Address     string
	Country     string
	Contact     string
	UserType    string
	Picture     *ImageUpload
}

// SignUp регистрирует нового пользователя.
//
// Процесс (каждый шаг — вызов внешнего коллаборатора со своим таймаутом):
//  1. создание identity (email+пароль) — «точка невозврата»: при ошибке
//     любого последующего шага identity откатывается;
//  2. загрузка изображения профиля (если передано) — бюджет Timeouts.Upload;
//  3. обновление отображаемых атрибутов identity — бюджет Timeouts.IdentityUpdate;
//  4. запись анкеты с role="user" и URL изображения — бюджет Timeouts.ProfileWrite.
//
// Валидация (до любых внешних вызовов):
//   - все обязательные поля непусты после TrimSpace, дата рождения парсится —
//     иначе ErrValidation;
//   - email корректен (ErrInvalidEmail), пароль проходит политику
//     (ErrWeakPassword/ErrEmptyPassword).
//
// Откат: при ошибке шагов 2–4 сага выполняет компенсации в обратном порядке
// (удаление недописанной анкеты, затем удаление identity), ошибки компенсаций
// глотаются — вызывающему возвращается исходная ошибка. Ошибка шага 1
// распространяется как есть: откатывать ещё нечего.
//
// Инвариант: после возврата либо существуют и identity, и анкета (успех),
// либо ни того ни другого (модуло ошибок best-effort-компенсаций).
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*models.Identity, error) {
	const op = "service/signup/SignUp"

	lg := log.From(ctx).With("op", op, "email", redact.Email(input.Email))

	dateOfBirth, err := s.validateSignUp(&input)
	if err != nil {
		lg.Warn("signup validation failed", "err", err.Error())

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	displayName := input.FirstName + " " + input.LastName

	var (
		identity *models.Identity
		photoURL string
	)

	steps := []saga.Step{
		{
			Name: "create_identity",
			Run: func(ctx context.Context) error {
				created, err := s.identities.CreateIdentity(ctx, &models.Identity{
					ID:           uuid.New(),
					Email:        input.Email,
					PasswordHash: string(hashedPassword),
					DisplayName:  displayName,
				})
				if err != nil {
					if errors.Is(err, storage.ErrAlreadyExists) {
						return ErrEmailTaken
					}

					return err
				}

				identity = created

				return nil
			},
			Compensate: func(ctx context.Context) error {
				if identity == nil {
					return nil
				}

				return s.identities.DeleteIdentity(ctx, identity.ID)
			},
		},
		{
			Name:    "upload_picture",
			Timeout: s.cfg.Timeouts.Upload,
			Run: func(ctx context.Context) error {
				if input.Picture == nil {
					return nil
				}

				url, err := s.blobs.UploadImage(ctx, identity.ID, input.Picture.Reader, input.Picture.ContentType, input.Picture.Size)
				if err != nil {
					if errors.Is(err, context.DeadlineExceeded) {
						return fmt.Errorf("%w: timeout", ErrUpload)
					}

					return fmt.Errorf("%w: %v", ErrUpload, err)
				}

				photoURL = url

				return nil
			},
			// Осиротевший объект в бакете не откатываем: анкета на него
			// не ссылается, чистка — забота lifecycle-политики бакета.
		},
		{
			Name:    "update_identity",
			Timeout: s.cfg.Timeouts.IdentityUpdate,
			Run: func(ctx context.Context) error {
				updated, err := s.identities.UpdateIdentity(ctx, identity.ID, storage.IdentityUpdate{
					DisplayName: &displayName,
					PhotoURL:    &photoURL,
				})
				if err != nil {
					return err
				}

				identity = updated

				return nil
			},
		},
		{
			Name:    "write_profile",
			Timeout: s.cfg.Timeouts.ProfileWrite,
			Run: func(ctx context.Context) error {
				_, err := s.profiles.CreateProfile(ctx, &models.Profile{
					UserID:         identity.ID,
					Role:           models.RoleUser,
					FirstName:      input.FirstName,
					LastName:       input.LastName,
					Email:          input.Email,
					DateOfBirth:    dateOfBirth,
					Gender:         models.ParseGender(input.Gender),
					MotherName:     input.MotherName,
					FatherName:     input.FatherName,
					Address:        input.Address,
					Country:        input.Country,
					Contact:        input.Contact,
					UserType:       input.UserType,
					ProfilePicture: photoURL,
				})
				if err != nil {
					return fmt.Errorf("%w: %v", ErrProfileWrite, err)
				}

				return nil
			},
			Compensate: func(ctx context.Context) error {
				// Шаг мог оставить недописанную запись — удаляем best-effort.
				return s.profiles.DeleteProfile(ctx, identity.ID)
			},
		},
	}

	if err := saga.Execute(ctx, steps); err != nil {
		lg.Warn("signup failed", "err", err.Error())

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.sessions.Set(identity)

	lg.Info("signup completed", "user_id", identity.ID.String())

	return identity, nil
}

// validateSignUp нормализует и проверяет форму до любых внешних вызовов.
// Возвращает разобранную дату рождения.
func (s *Service) validateSignUp(input *SignUpInput) (time.Time, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.DateOfBirth = strings.TrimSpace(input.DateOfBirth)
	input.Gender = strings.TrimSpace(input.Gender)
	input.MotherName = strings.TrimSpace(input.MotherName)
	input.FatherName = strings.TrimSpace(input.FatherName)
	input.Address = strings.TrimSpace(input.Address)
	input.Country = strings.TrimSpace(input.Country)
	input.Contact = strings.TrimSpace(input.Contact)
	input.UserType = strings.TrimSpace(input.UserType)

	// Пароль проверяется по обрезанной форме, но сохраняется как есть:
	// пробелы внутри пароля значимы, пароль из одних пробелов — нет.
	required := []string{
		input.FirstName,
		input.LastName,
		input.Email,
		strings.TrimSpace(input.Password),
		input.DateOfBirth,
		input.Gender,
		input.MotherName,
		input.FatherName,
		input.Address,
		input.Country,
		input.Contact,
		input.UserType,
	}

	for _, v := range required {
		if v == "" {
			return time.Time{}, ErrValidation
		}
	}

	dateOfBirth, err := time.Parse("2006-01-02", input.DateOfBirth)
	if err != nil {
		return time.Time{}, ErrValidation
	}

	normEmail, err := validateEmail(input.Email)
	if err != nil {
		return time.Time{}, err
	}
	input.Email = normEmail

	if err := validatePassword(input.Password); err != nil {
		return time.Time{}, err
	}

	return dateOfBirth, nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", ErrInvalidEmail
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика провайдера: длина >= 6 символов.
func validatePassword(pw string) error {
	if len(pw) == 0 {
		return ErrEmptyPassword
	}

	if len([]rune(pw)) < 6 {
		return ErrWeakPassword
	}

	return nil
}
