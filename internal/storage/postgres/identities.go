package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/noorportal/account-service/internal/models"
	"github.com/noorportal/account-service/internal/storage"
)

// identityColumns — единый список колонок таблицы identities,
// используемый в SELECT/RETURNING, чтобы гарантировать одинаковый порядок сканирования.
const identityColumns = `
id, email, password_hash, display_name, photo_url, created_at, updated_at
`

// scanIdentity сканирует одну строку identity из результата запроса.
func scanIdentity(row pgx.Row) (*models.Identity, error) {
	var identity models.Identity

	if err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.DisplayName,
		&identity.PhotoURL,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &identity, nil
}

// CreateIdentity вставляет новую запись identity.
// Ошибки: storage.ErrAlreadyExists при конфликте уникальности email, иные — как есть.
func (s *Storage) CreateIdentity(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	const op = "storage/postgres/identities/CreateIdentity"

	q := `
	INSERT INTO identities (id, email, password_hash, display_name, photo_url)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING
	` + identityColumns

	row := s.db.QueryRow(ctx, q,
		identity.ID,
		identity.Email,
		identity.PasswordHash,
		identity.DisplayName,
		identity.PhotoURL,
	)

	result, err := scanIdentity(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// IdentityByID возвращает identity по id.
// Ошибки: storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *Storage) IdentityByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	const op = "storage/postgres/identities/IdentityByID"

	q := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	result, err := scanIdentity(s.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// IdentityByEmail возвращает identity по email.
// Ошибки: storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *Storage) IdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	const op = "storage/postgres/identities/IdentityByEmail"

	q := `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`

	result, err := scanIdentity(s.db.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpdateIdentity выполняет частичный апдейт отображаемых атрибутов:
// обновляет только поля, указанные непустыми pointer-полями,
// и всегда сдвигает updated_at = now().
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *Storage) UpdateIdentity(ctx context.Context, id uuid.UUID, update storage.IdentityUpdate) (*models.Identity, error) {
	const op = "storage/postgres/identities/UpdateIdentity"

	sets := []string{"updated_at = now()"}
	args := make([]any, 0, 3)
	count := 1

	if update.DisplayName != nil {
		count++
		sets = append(sets, fmt.Sprintf("display_name = $%d", count))
		args = append(args, *update.DisplayName)
	}

	if update.PhotoURL != nil {
		count++
		sets = append(sets, fmt.Sprintf("photo_url = $%d", count))
		args = append(args, *update.PhotoURL)
	}

	q := `
	UPDATE identities SET ` + strings.Join(sets, ", ") + `
	WHERE id = $1
	RETURNING
	` + identityColumns

	allArgs := append([]any{id}, args...)

	result, err := scanIdentity(s.db.QueryRow(ctx, q, allArgs...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// DeleteIdentity удаляет identity по id.
// Отсутствие записи ошибкой не считается (идемпотентная компенсация).
func (s *Storage) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	const op = "storage/postgres/identities/DeleteIdentity"

	if _, err := s.db.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
