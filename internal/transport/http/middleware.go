package http

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/noorportal/account-service/internal/models"
	"github.com/noorportal/account-service/internal/service"
	"github.com/noorportal/account-service/pkg/log"
)

type identityCtxKey struct{}

// identityFrom достаёт аутентифицированную identity из контекста запроса (или nil).
func identityFrom(ctx context.Context) *models.Identity {
	if v := ctx.Value(identityCtxKey{}); v != nil {
		if ident, ok := v.(*models.Identity); ok {
			return ident
		}
	}

	return nil
}

// RequestLogger реализует логирование запросов с контекстным логгером.
//
// Поведение и формат логов:
//   - Вытягивает X-Request-Id из заголовков, иначе генерирует UUID;
//   - Кладёт обогащённый *slog.Logger в context (pkg/log), чтобы он был
//     доступен глубже по стеку;
//   - После выполнения handler пишет одну строку уровня Info: msg="http",
//     status=<код ответа>, dur=<время выполнения>.
//
// Безопасность: логи не содержат чувствительных данных
// (только метод/путь/peer/request_id).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rid := r.Header.Get("X-Request-Id")
			if rid == "" {
				rid = uuid.NewString()
			}

			l := base.With(
				slog.String("request_id", rid),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("peer", r.RemoteAddr),
			)

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			w.Header().Set("X-Request-Id", rid)

			next.ServeHTTP(ww, r.WithContext(log.Into(r.Context(), l)))

			l.Info("http",
				slog.Int("status", ww.status),
				slog.Duration("dur", time.Since(start)),
			)
		})
	}
}

// Recover перехватывает паники в обработчиках, логирует их со стеком
// и отвечает клиенту нейтральной ошибкой 500 без раскрытия внутренних деталей.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.From(r.Context()).Error("panic_recovered",
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)

				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// WithTimeout ограничивает обработку запроса дедлайном, если его ещё нет.
func WithTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticate разбирает bearer-токен и кладёт identity в контекст.
// Запросы без валидного токена проходят дальше без identity:
// решение о доступе принимает гейт конкретного раздела.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		uid, email, err := s.service.ValidateAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ident := &models.Identity{ID: uid, Email: email}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityCtxKey{}, ident)))
	})
}

// RequireAccess — гейт защищённых разделов. На каждый запрос заново
// разрешает доступ через сервис (без кэширования решения); отказ — тихий
// редирект (303) на цель из решения, без сообщения об ошибке.
func (s *Server) RequireAccess(requirement service.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := s.service.ResolveAccess(r.Context(), identityFrom(r.Context()), requirement)
			if !decision.Granted {
				http.Redirect(w, r, decision.RedirectTarget, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// statusWriter запоминает статус ответа для логирования.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
