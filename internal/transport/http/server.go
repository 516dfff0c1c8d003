package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quiz-kingdom/internal/app"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps is everything the HTTP layer needs.
type Deps struct {
	Rooms       *app.RoomService
	Leaderboard *app.LeaderboardService
	Bank        app.QuestionBank
	Logger      *slog.Logger
	// BaseURL is the public origin used in join links; derived from the request when empty.
	BaseURL string
	Checks  map[string]HealthCheck
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func New(addr string, deps Deps) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: deps.Logger,
	}
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("starting quiz kingdom", "addr", s.srv.Addr)

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// NewRouter builds the chi router with every API route mounted.
func NewRouter(deps Deps) chi.Router {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	addRoutes(r, deps)
	return r
}

func addRoutes(r chi.Router, deps Deps) {
	rooms := &roomHandlers{service: deps.Rooms, logger: deps.Logger, baseURL: deps.BaseURL}
	ws := NewWSHandler(deps.Rooms, deps.Logger)

	r.Get("/healthz", handleHealth(deps.Logger, deps.Checks))

	r.Route("/api", func(r chi.Router) {
		r.Use(identityMiddleware)

		r.Post("/rooms", rooms.create)
		r.Route("/rooms/{code}", func(r chi.Router) {
			r.Get("/", rooms.get)
			r.Delete("/", rooms.delete)
			r.Post("/join", rooms.join)
			r.Post("/start", rooms.start)
			r.Post("/advance", rooms.advance)
			r.Post("/close", rooms.close)
			r.Post("/reset", rooms.reset)
			r.Post("/answers", rooms.answer)
			r.Get("/results", rooms.results)
			r.Get("/qr", rooms.qr)
			r.Get("/ws", ws.ServeWS)

			r.Get("/questions", rooms.listQuestions)
			r.Post("/questions", rooms.addQuestion)
			r.Post("/questions/import", rooms.importQuestions)
			r.Patch("/questions/{id}", rooms.updateQuestion)
			r.Delete("/questions/{id}", rooms.deleteQuestion)
		})

		if deps.Bank != nil {
			r.Get("/bank/{category}", handleBank(deps.Bank, deps.Logger))
		}
		if deps.Leaderboard != nil {
			r.Get("/leaderboard", handleLeaderboardTop(deps.Leaderboard, deps.Logger))
			r.Post("/leaderboard", handleLeaderboardSubmit(deps.Leaderboard, deps.Logger))
		}
	})
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
