package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"quiz-kingdom/internal/app"
	"quiz-kingdom/internal/domain"
)

// maxSheetBytes bounds CSV uploads.
const maxSheetBytes = 1 << 20

type roomHandlers struct {
	service *app.RoomService
	logger  *slog.Logger
	baseURL string
}

type createRoomResponse struct {
	Room    domain.RoomSnapshot `json:"room"`
	JoinURL string              `json:"joinUrl"`
}

type joinRequest struct {
	Name    string `json:"name"`
	IconURL string `json:"iconUrl"`
}

type answerRequest struct {
	QuestionID string `json:"questionId"`
	Choice     *int   `json:"choice"`
}

type resultsResponse struct {
	Code    string                `json:"code"`
	Players []domain.RankedPlayer `json:"players"`
}

func roomCode(r *http.Request) string {
	return app.NormalizeCode(chi.URLParam(r, "code"))
}

func (h *roomHandlers) create(w http.ResponseWriter, r *http.Request) {
	var cfg domain.RoomConfig
	if err := readJSON(r, &cfg); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snap, err := h.service.CreateRoom(r.Context(), userID(r), cfg)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, createRoomResponse{Room: snap, JoinURL: h.joinURL(r, snap.Code)})
}

func (h *roomHandlers) get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.RoomFor(r.Context(), roomCode(r), userID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *roomHandlers) delete(w http.ResponseWriter, r *http.Request) {
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := h.service.DeleteRoom(r.Context(), roomCode(r), userID(r), confirm); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *roomHandlers) join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snap, err := h.service.Join(r.Context(), roomCode(r), userID(r), req.Name, req.IconURL)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *roomHandlers) start(w http.ResponseWriter, r *http.Request) {
	h.hostCommand(w, r, h.service.StartGame)
}

func (h *roomHandlers) advance(w http.ResponseWriter, r *http.Request) {
	h.hostCommand(w, r, h.service.AdvancePhase)
}

func (h *roomHandlers) close(w http.ResponseWriter, r *http.Request) {
	h.hostCommand(w, r, h.service.CloseQuestion)
}

func (h *roomHandlers) reset(w http.ResponseWriter, r *http.Request) {
	h.hostCommand(w, r, h.service.ResetGame)
}

type hostCommandFunc func(ctx context.Context, code, hostID string) (domain.RoomSnapshot, error)

func (h *roomHandlers) hostCommand(w http.ResponseWriter, r *http.Request, cmd hostCommandFunc) {
	snap, err := cmd(r.Context(), roomCode(r), userID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *roomHandlers) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" || req.Choice == nil {
		writeError(w, http.StatusBadRequest, "questionId and choice are required")
		return
	}
	result, err := h.service.SubmitAnswer(r.Context(), roomCode(r), userID(r), req.QuestionID, *req.Choice)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *roomHandlers) results(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	ranked, err := h.service.Results(r.Context(), code)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{Code: code, Players: ranked})
}

// qr renders a PNG QR code of the room's join link.
func (h *roomHandlers) qr(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Room(r.Context(), roomCode(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(h.joinURL(r, snap.Code), qrcode.Medium, qrSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *roomHandlers) joinURL(r *http.Request, code string) string {
	base := strings.TrimSuffix(h.baseURL, "/")
	if base == "" {
		// respect TLS and X-Forwarded-Proto if present
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/join/" + code
}

func (h *roomHandlers) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.ListQuestions(r.Context(), roomCode(r), userID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *roomHandlers) addQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := readJSON(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	added, err := h.service.AddQuestion(r.Context(), roomCode(r), userID(r), q)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// importQuestions accepts either a raw text/csv body or a multipart form with a "file" field.
func (h *roomHandlers) importQuestions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSheetBytes)
	defer r.Body.Close()

	var sheet io.Reader = r.Body
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "sheet too large")
				return
			}
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()
		sheet = file
	}

	added, err := h.service.ImportQuestions(r.Context(), roomCode(r), userID(r), sheet)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *roomHandlers) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var patch domain.QuestionPatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.service.UpdateQuestion(r.Context(), roomCode(r), userID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *roomHandlers) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuestion(r.Context(), roomCode(r), userID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
