package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"quiz-kingdom/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrPlayerNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotHost):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrMissingIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidQuestion),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidEntry),
		errors.Is(err, domain.ErrChoiceOutOfRange),
		errors.Is(err, domain.ErrInvalidRoomConfig),
		errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrRoomNotWaiting),
		errors.Is(err, domain.ErrRoomNotJoinable),
		errors.Is(err, domain.ErrRoomExists),
		errors.Is(err, domain.ErrNoPlayers),
		errors.Is(err, domain.ErrNoQuestions),
		errors.Is(err, domain.ErrNotAcceptingAnswers),
		errors.Is(err, domain.ErrQuestionNotActive),
		errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrGameNotFinished):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
