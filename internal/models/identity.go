// models содержит доменные сущности account-сервиса.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity — аутентификационная сущность (email + креденшелы).
// ID неизменяем после создания; DisplayName/PhotoURL обновляются
// отдельной операцией UpdateIdentity.
type Identity struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	DisplayName  string
	PhotoURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
