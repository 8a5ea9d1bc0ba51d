package models

import (
	"time"

	"github.com/google/uuid"
)

// Role — роль учётной записи в портале.
// По умолчанию у нового профиля роль "user"; повышение до "admin"
// выполняется отдельным административным процессом.
type Role int8

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	default:
		return "user"
	}
}

// ParseRole разбирает строковое представление роли.
// Неизвестные значения трактуются как RoleUser (deny by default).
func ParseRole(s string) Role {
	if s == "admin" {
		return RoleAdmin
	}

	return RoleUser
}

// Gender — внутренний enum.
type Gender int8

const (
	GenderUnspecified Gender = iota
	GenderMale
	GenderFemale
	GenderOther
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	case GenderOther:
		return "other"
	default:
		return "unspecified"
	}
}

// ParseGender разбирает строковое представление пола из формы регистрации.
func ParseGender(s string) Gender {
	switch s {
	case "male":
		return GenderMale
	case "female":
		return GenderFemale
	case "other":
		return GenderOther
	default:
		return GenderUnspecified
	}
}

// Profile — внутренняя доменная модель анкеты пользователя.
// UserID совпадает с Identity.ID; инвариант сервиса: профиль существует
// тогда и только тогда, когда регистрация прошла до конца.
type Profile struct {
	UserID         uuid.UUID
	Role           Role
	FirstName      string
	LastName       string
	Email          string
	DateOfBirth    time.Time
	Gender         Gender
	MotherName     string
	FatherName     string
	Address        string
	Country        string
	Contact        string
	UserType       string
	ProfilePicture string // публичный URL; пустая строка — аватар не загружен
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
