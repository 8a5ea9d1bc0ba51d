// session реализует наблюдаемое состояние «кто сейчас аутентифицирован».
// Hub внедряется зависимостью (не глобальное состояние): мутируется только
// операциями login/logout/signup сервиса, остальные компоненты читают
// текущее значение или подписываются на изменения с явной отпиской.
package session

import (
	"log/slog"
	"sync"

	"github.com/noorportal/account-service/internal/models"
	"github.com/noorportal/account-service/pkg/redact"
)

// Hub — процесс-локальное наблюдаемое представление текущей сессии.
// nil identity означает «нет аутентифицированной сессии».
// Безопасен для конкурентного использования.
type Hub struct {
	mu      sync.RWMutex
	current *models.Identity
	subs    map[int]func(*models.Identity)
	nextID  int
}

// NewHub создает пустой hub без активной сессии.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(*models.Identity))}
}

// Current возвращает identity текущей сессии или nil.
func (h *Hub) Current() *models.Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.current
}

// Set устанавливает текущую сессию и уведомляет подписчиков.
// Вызывается только операциями login/logout/signup.
func (h *Hub) Set(identity *models.Identity) {
	h.mu.Lock()
	h.current = identity

	notify := make([]func(*models.Identity), 0, len(h.subs))
	for _, fn := range h.subs {
		notify = append(notify, fn)
	}
	h.mu.Unlock()

	// Уведомления вне блокировки: подписчик может сам обратиться к hub.
	for _, fn := range notify {
		fn(identity)
	}
}

// Subscribe регистрирует наблюдателя изменений сессии и возвращает
// функцию отписки. Наблюдатель сразу получает текущее состояние.
func (h *Hub) Subscribe(fn func(*models.Identity)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	current := h.current
	h.mu.Unlock()

	fn(current)

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// LogChanges подписывает логгер на изменения сессии (аудит входов/выходов)
// и возвращает функцию отписки. Вызывается композиционным корнем.
func LogChanges(h *Hub, lg *slog.Logger) (unsubscribe func()) {
	return h.Subscribe(func(ident *models.Identity) {
		if ident == nil {
			lg.Info("session_changed", slog.Bool("authenticated", false))
			return
		}

		lg.Info("session_changed",
			slog.Bool("authenticated", true),
			slog.String("user_id", ident.ID.String()),
			slog.String("email", redact.Email(ident.Email)),
		)
	})
}
