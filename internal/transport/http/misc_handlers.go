package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"quiz-kingdom/internal/app"
	"quiz-kingdom/internal/domain"
)

func handleHealth(logger *slog.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	type result struct {
		Status string `json:"status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		results := map[string]result{"app": {Status: "ok"}}
		status := http.StatusOK

		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Error("health check failed", "name", name, "error", err)
				results[name] = result{Status: "error"}
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = result{Status: "ok"}
		}

		writeJSON(w, status, results)
	}
}

// handleBank serves one category of the global question bank for solo play.
func handleBank(bank app.QuestionBank, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := bank.Category(r.Context(), chi.URLParam(r, "category"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		for i := range questions {
			questions[i] = questions[i].Normalize()
		}
		writeJSON(w, http.StatusOK, questions)
	}
}

func handleLeaderboardTop(service *app.LeaderboardService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "limit must be a number")
				return
			}
			limit = n
		}
		entries, err := service.Top(r.Context(), r.URL.Query().Get("category"), limit)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func handleLeaderboardSubmit(service *app.LeaderboardService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entry domain.LeaderboardEntry
		if err := readJSON(r, &entry); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		saved, err := service.Submit(r.Context(), entry)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}
