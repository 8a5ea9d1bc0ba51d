package postgres

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/noorportal/account-service/internal/models"
	"github.com/noorportal/account-service/internal/storage"
)

// Интеграционные тесты пакета postgres (identities.go, profiles.go):
// — поднимают реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// — применяют встроенные миграции через RunMigrations;
// — проверяют:
//    CreateIdentity: успешную вставку и ErrAlreadyExists при повторе email;
//    IdentityByID/IdentityByEmail: успешный сценарий и ErrNotFound;
//    UpdateIdentity: частичное обновление, инкремент updated_at, ErrNotFound;
//    DeleteIdentity: идемпотентное удаление + каскадное удаление анкеты;
//    CreateProfile: успешную вставку и ErrAlreadyExists при повторе PK;
//    ProfileByID: успешный сценарий и ErrNotFound;
//    DeleteProfile: идемпотентное удаление;
//    поведение при истёкшем контексте (context deadline exceeded).
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// startPostgres — поднимает PostgreSQL через testcontainers-go,
// применяет миграции и возвращает инициализированное хранилище и функцию очистки.
// Если переменная окружения GO_TEST_INTEGRATION не установлена — тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "docker.io/postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	t.Logf("starting postgres container with image=%q", req.Image)
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		ProviderType:     tc.ProviderDocker,
	})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	require.NoError(t, RunMigrations(dsn))

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

// seedIdentity — вставляет identity с уникальным email и возвращает её.
func seedIdentity(t *testing.T, st *Storage) *models.Identity {
	t.Helper()

	id := uuid.New()
	created, err := st.CreateIdentity(context.Background(), &models.Identity{
		ID:           id,
		Email:        id.String() + "@example.com",
		PasswordHash: "$2a$04$hash",
		DisplayName:  "Alice Smith",
	})
	require.NoError(t, err)
	return created
}

func TestIntegration_CreateIdentity_And_Lookups_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	created := seedIdentity(t, st)
	require.Equal(t, "Alice Smith", created.DisplayName)
	require.Equal(t, "", created.PhotoURL)
	require.WithinDuration(t, time.Now().UTC(), created.CreatedAt, 5*time.Second)
	require.WithinDuration(t, time.Now().UTC(), created.UpdatedAt, 5*time.Second)

	byID, err := st.IdentityByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created, byID)

	byEmail, err := st.IdentityByEmail(context.Background(), created.Email)
	require.NoError(t, err)
	require.Equal(t, created, byEmail)
}

func TestIntegration_CreateIdentity_DuplicateEmail(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	first := seedIdentity(t, st)

	_, err := st.CreateIdentity(context.Background(), &models.Identity{
		ID:           uuid.New(),
		Email:        first.Email,
		PasswordHash: "$2a$04$other",
	})
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestIntegration_IdentityByID_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.IdentityByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.IdentityByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_UpdateIdentity_Partial_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	orig := seedIdentity(t, st)

	time.Sleep(1100 * time.Millisecond)

	newName := "Alice Johnson"
	newURL := "https://cdn.example.com/a.png"
	got, err := st.UpdateIdentity(context.Background(), orig.ID, storage.IdentityUpdate{
		DisplayName: &newName,
		PhotoURL:    &newURL,
	})
	require.NoError(t, err)
	require.Equal(t, "Alice Johnson", got.DisplayName)
	require.Equal(t, "https://cdn.example.com/a.png", got.PhotoURL)
	require.Equal(t, orig.Email, got.Email)
	require.Equal(t, orig.CreatedAt, got.CreatedAt)
	require.True(t, got.UpdatedAt.After(orig.UpdatedAt), "updated_at must increase")
}

func TestIntegration_UpdateIdentity_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	name := "x"
	_, err := st.UpdateIdentity(context.Background(), uuid.New(), storage.IdentityUpdate{DisplayName: &name})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_DeleteIdentity_Idempotent_CascadesProfile(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ident := seedIdentity(t, st)
	_, err := st.CreateProfile(context.Background(), sampleProfile(ident))
	require.NoError(t, err)

	require.NoError(t, st.DeleteIdentity(context.Background(), ident.ID))

	_, err = st.IdentityByID(context.Background(), ident.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Каскад: анкета удаляется вместе с identity.
	_, err = st.ProfileByID(context.Background(), ident.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Повторное удаление — не ошибка.
	require.NoError(t, st.DeleteIdentity(context.Background(), ident.ID))
}

func sampleProfile(ident *models.Identity) *models.Profile {
	return &models.Profile{
		UserID:      ident.ID,
		Role:        models.RoleUser,
		FirstName:   "Alice",
		LastName:    "Smith",
		Email:       ident.Email,
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      models.GenderFemale,
		MotherName:  "Mary",
		FatherName:  "John",
		Address:     "1 Main St",
		Country:     "LV",
		Contact:     "+37120000000",
		UserType:    "mureed",
	}
}

func TestIntegration_CreateProfile_And_ProfileByID_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ident := seedIdentity(t, st)

	created, err := st.CreateProfile(context.Background(), sampleProfile(ident))
	require.NoError(t, err)
	require.Equal(t, ident.ID, created.UserID)
	require.Equal(t, models.RoleUser, created.Role)
	require.Equal(t, "Alice", created.FirstName)
	require.Equal(t, models.GenderFemale, created.Gender)
	require.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), created.DateOfBirth.UTC())
	require.Equal(t, "", created.ProfilePicture)
	require.WithinDuration(t, time.Now().UTC(), created.CreatedAt, 5*time.Second)

	got, err := st.ProfileByID(context.Background(), ident.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestIntegration_CreateProfile_AlreadyExists(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ident := seedIdentity(t, st)

	_, err := st.CreateProfile(context.Background(), sampleProfile(ident))
	require.NoError(t, err)

	_, err = st.CreateProfile(context.Background(), sampleProfile(ident))
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestIntegration_ProfileByID_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.ProfileByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_DeleteProfile_Idempotent(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ident := seedIdentity(t, st)
	_, err := st.CreateProfile(context.Background(), sampleProfile(ident))
	require.NoError(t, err)

	require.NoError(t, st.DeleteProfile(context.Background(), ident.ID))

	_, err = st.ProfileByID(context.Background(), ident.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Identity остаётся: компенсация удаляет только анкету.
	_, err = st.IdentityByID(context.Background(), ident.ID)
	require.NoError(t, err)

	require.NoError(t, st.DeleteProfile(context.Background(), ident.ID))
}

func TestIntegration_CreateIdentity_ContextDeadlineExceeded(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	_, err := st.CreateIdentity(ctx, &models.Identity{ID: uuid.New(), Email: "d@example.com"})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), context.DeadlineExceeded.Error()))
}
