package service

import (
	"context"

	"github.com/noorportal/account-service/internal/models"
	"github.com/noorportal/account-service/pkg/log"
)

// Requirement — вариант защищённого раздела.
type Requirement int8

const (
	// RequireAuthenticated — раздел доступен любой аутентифицированной сессии.
	RequireAuthenticated Requirement = iota
	// RequireAdmin — раздел доступен только роли admin.
	RequireAdmin
)

// RoleState — теговое представление результата разрешения роли.
// Намеренно нет состояния «неизвестно, но доступ разрешён»:
// до подтверждения admin доступ структурно запрещён.
type RoleState int8

const (
	// RolePending — разрешение роли ещё не выполнялось.
	RolePending RoleState = iota
	// RoleResolvedAdmin — анкета прочитана, role = admin.
	RoleResolvedAdmin
	// RoleResolvedUser — анкета прочитана, role = user.
	RoleResolvedUser
	// RoleDenied — сессии нет, либо чтение анкеты не удалось (fail closed).
	RoleDenied
)

// Цели редиректов при отказе в доступе.
const (
	RedirectLogin = "/login"
	RedirectHome  = "/"
)

// Decision — решение гейта по одной навигации.
type Decision struct {
	Granted        bool
	Role           RoleState
	RedirectTarget string // пусто при Granted
}

// ResolveAccess разрешает доступ сессии к защищённому разделу.
//
// Поведение:
//   - нет сессии (identity == nil) — отказ, редирект на /login;
//   - RequireAuthenticated — доступ по факту наличия сессии;
//   - RequireAdmin — анкета перечитывается на каждый вызов (без кэша решения),
//     доступ только при role = admin, иначе тихий редирект на главную;
//   - ошибка чтения анкеты — fail closed: отказ как для не-админа,
//     ошибка не поднимается наружу, только логируется.
func (s *Service) ResolveAccess(ctx context.Context, identity *models.Identity, requirement Requirement) Decision {
	const op = "service/access/ResolveAccess"

	lg := log.From(ctx).With("op", op)

	if identity == nil {
		return Decision{Granted: false, Role: RoleDenied, RedirectTarget: RedirectLogin}
	}

	if requirement == RequireAuthenticated {
		return Decision{Granted: true, Role: RolePending}
	}

	profile, err := s.profiles.ProfileByID(ctx, identity.ID)
	if err != nil {
		// Fail closed: при неопределённости запрещаем, а не разрешаем.
		lg.Error("profile lookup failed, denying admin access",
			"user_id", identity.ID.String(),
			"err", err.Error(),
		)

		return Decision{Granted: false, Role: RoleDenied, RedirectTarget: RedirectHome}
	}

	if profile.Role != models.RoleAdmin {
		return Decision{Granted: false, Role: RoleResolvedUser, RedirectTarget: RedirectHome}
	}

	return Decision{Granted: true, Role: RoleResolvedAdmin}
}
