// http содержит реализацию HTTP-эндпоинтов account-сервиса.
//
// Принципы:
//   - Контекст запроса прокидывается в сервис без потерь;
//   - Входные данные валидируются на уровне транспорта (формат формы/JSON);
//   - Ошибки сервиса маппятся в HTTP-статусы (см. respond.go);
//   - Отказ гейта — тихий 303-редирект, не сообщение об ошибке.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/noorportal/account-service/internal/config"
	"github.com/noorportal/account-service/internal/models"
	"github.com/noorportal/account-service/internal/service"
)

// maxMultipartMemory — бюджет памяти разбора multipart-формы регистрации;
// остальное уходит во временные файлы.
const maxMultipartMemory = 10 << 20

// Server — HTTP-сервер account-сервиса.
type Server struct {
	cfg     *config.Config
	service *service.Service
}

// NewServer создаёт HTTP-сервер поверх бизнес-логики.
func NewServer(svc *service.Service, cfg *config.Config) *Server {
	return &Server{cfg: cfg, service: svc}
}

// Router собирает маршрутизатор со всей цепочкой middleware.
func (s *Server) Router(base *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(RequestLogger(base))
	r.Use(Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}))
	r.Use(s.Authenticate)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Регистрации нужен бюджет, перекрывающий сумму шагов саги.
			r.With(WithTimeout(s.cfg.Timeouts.Signup)).Post("/signup", s.handleSignUp)

			r.Group(func(r chi.Router) {
				r.Use(WithTimeout(s.cfg.Timeouts.Request))
				r.Post("/login", s.handleLogin)
				r.Post("/logout", s.handleLogout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(WithTimeout(s.cfg.Timeouts.Request))

			r.With(s.RequireAccess(service.RequireAuthenticated)).
				Get("/profile", s.handleProfile)

			r.With(s.RequireAccess(service.RequireAdmin)).
				Get("/admin/overview", s.handleAdminOverview)
		})
	})

	return r
}

// handleSignUp регистрирует нового пользователя (multipart-форма портала,
// опциональная часть profile_picture).
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}

	input := service.SignUpInput{
		FirstName:   r.FormValue("first_name"),
		LastName:    r.FormValue("last_name"),
		Email:       r.FormValue("email"),
		Password:    r.FormValue("password"),
		DateOfBirth: r.FormValue("date_of_birth"),
		Gender:      r.FormValue("gender"),
		MotherName:  r.FormValue("mother_name"),
		FatherName:  r.FormValue("father_name"),
		Address:     r.FormValue("address"),
		Country:     r.FormValue("country"),
		Contact:     r.FormValue("contact"),
		UserType:    r.FormValue("user_type"),
	}

	file, header, err := r.FormFile("profile_picture")
	if err == nil {
		defer file.Close()

		input.Picture = &service.ImageUpload{
			Reader:      file,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		}
	} else if err != http.ErrMissingFile {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}

	identity, err := s.service.SignUp(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toIdentityResponse(identity))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin выполняет вход и возвращает токен сессии.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	identity, token, err := s.service.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toIdentityResponse(identity),
	})
}

// handleLogout завершает сессию.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.service.LogoutUser(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleProfile возвращает анкету аутентифицированного пользователя.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r.Context())

	profile, err := s.service.ProfileByID(r.Context(), ident.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// handleAdminOverview — стартовая точка админ-раздела:
// возвращает анкету администратора. Доступ уже проверен гейтом.
func (s *Server) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r.Context())

	profile, err := s.service.ProfileByID(r.Context(), ident.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"admin":  toProfileResponse(profile),
	})
}

type identityResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

func toIdentityResponse(identity *models.Identity) identityResponse {
	return identityResponse{
		ID:          identity.ID.String(),
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
	}
}

type profileResponse struct {
	ID             string  `json:"id"`
	Role           string  `json:"role"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	DateOfBirth    string  `json:"date_of_birth"`
	Gender         string  `json:"gender"`
	MotherName     string  `json:"mother_name"`
	FatherName     string  `json:"father_name"`
	Address        string  `json:"address"`
	Country        string  `json:"country"`
	Contact        string  `json:"contact"`
	UserType       string  `json:"user_type"`
	ProfilePicture *string `json:"profile_picture"` // null, если аватар не загружен
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func toProfileResponse(profile *models.Profile) profileResponse {
	var picture *string
	if profile.ProfilePicture != "" {
		picture = &profile.ProfilePicture
	}

	return profileResponse{
		ID:             profile.UserID.String(),
		Role:           profile.Role.String(),
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		Email:          profile.Email,
		DateOfBirth:    profile.DateOfBirth.Format("2006-01-02"),
		Gender:         profile.Gender.String(),
		MotherName:     profile.MotherName,
		FatherName:     profile.FatherName,
		Address:        profile.Address,
		Country:        profile.Country,
		Contact:        profile.Contact,
		UserType:       profile.UserType,
		ProfilePicture: picture,
		CreatedAt:      profile.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      profile.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
