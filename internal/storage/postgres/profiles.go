package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/noorportal/account-service/internal/models"
	"github.com/noorportal/account-service/internal/storage"
)

// profileColumns — единый список колонок таблицы profiles,
// используемый в SELECT/RETURNING, чтобы гарантировать одинаковый порядок сканирования.
const profileColumns = `
user_id, role, first_name, last_name, email, date_of_birth, gender,
mother_name, father_name, address, country, contact, user_type,
profile_picture, created_at, updated_at
`

// scanProfile сканирует одну строку анкеты из результата запроса
// в доменную модель с корректными кастами типов (TEXT -> models.Role, SMALLINT -> models.Gender).
func scanProfile(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile
	var role string
	var gender int16

	if err := row.Scan(
		&profile.UserID,
		&role,
		&profile.FirstName,
		&profile.LastName,
		&profile.Email,
		&profile.DateOfBirth,
		&gender,
		&profile.MotherName,
		&profile.FatherName,
		&profile.Address,
		&profile.Country,
		&profile.Contact,
		&profile.UserType,
		&profile.ProfilePicture,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}

	profile.Role = models.ParseRole(role)
	profile.Gender = models.Gender(gender)

	return &profile, nil
}

// CreateProfile вставляет новую запись анкеты.
// Ошибки: storage.ErrAlreadyExists при конфликте PK, иные — как есть.
func (s *Storage) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	const op = "storage/postgres/profiles/CreateProfile"

	q := `
	INSERT INTO profiles (user_id, role, first_name, last_name, email, date_of_birth,
		gender, mother_name, father_name, address, country, contact, user_type, profile_picture)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING
	` + profileColumns

	row := s.db.QueryRow(ctx, q,
		profile.UserID,
		profile.Role.String(),
		profile.FirstName,
		profile.LastName,
		profile.Email,
		profile.DateOfBirth,
		int16(profile.Gender),
		profile.MotherName,
		profile.FatherName,
		profile.Address,
		profile.Country,
		profile.Contact,
		profile.UserType,
		profile.ProfilePicture,
	)

	result, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// ProfileByID возвращает анкету по user_id.
// Ошибки: storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *Storage) ProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "storage/postgres/profiles/ProfileByID"

	q := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	result, err := scanProfile(s.db.QueryRow(ctx, q, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// DeleteProfile удаляет анкету по user_id.
// Отсутствие записи ошибкой не считается (идемпотентная компенсация).
func (s *Storage) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	const op = "storage/postgres/profiles/DeleteProfile"

	if _, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
