package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noorportal/account-service/internal/service"
)

// writeJSON сериализует payload в ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError отвечает единообразной ошибкой {"error": "..."}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError маппит ошибки сервиса в HTTP-статусы и
// человекочитаемые сообщения. Сообщения намеренно «плоские»:
// внутренние детали и различие «нет пользователя/неверный пароль»
// наружу не раскрываются.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "please fill in all required fields correctly")
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "invalid email address")
	case errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrEmptyPassword):
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "this email is already registered")
	case errors.Is(err, service.ErrUpload):
		writeError(w, http.StatusUnprocessableEntity, "profile picture upload failed, please try again")
	case errors.Is(err, service.ErrProfileWrite):
		writeError(w, http.StatusServiceUnavailable, "could not save your profile, please try again")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "session expired, please log in again")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
