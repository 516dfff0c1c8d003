package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quiz-kingdom/internal/app"
	"quiz-kingdom/internal/domain"
)

type WSHandler struct {
	service  *app.RoomService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoomService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Choice     int    `json:"choice"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and streams room snapshots.
// With a name query parameter the caller joins (or rejoins) as a player;
// without one it watches, which is how a non-playing host connects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	uid := userID(r)
	name := r.URL.Query().Get("name")
	iconURL := r.URL.Query().Get("iconUrl")
	if uid == "" {
		writeError(w, http.StatusUnauthorized, domain.ErrMissingIdentity.Error())
		return
	}
	if _, err := h.service.Room(r.Context(), code); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "room", code, "error", err)
		return
	}
	defer conn.Close()

	var joined domain.RoomSnapshot
	if name != "" {
		joined, err = h.service.Join(r.Context(), code, uid, name, iconURL)
	} else {
		joined, err = h.service.RoomFor(r.Context(), code, uid)
	}
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), code)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	// the writer is the only goroutine that writes data frames
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", "room", code, "error", err)
				return
			}
			if snap, ok := msg.Payload.(domain.RoomSnapshot); ok && snap.Deleted {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room deleted"),
					time.Now().Add(time.Second))
				return
			}
		}
	}()

	push(outboundMessage[any]{Type: "joined", Payload: joined})

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "room", Payload: update}:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			result, err := h.service.SubmitAnswer(r.Context(), code, uid, payload.QuestionID, payload.Choice)
			if err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			push(outboundMessage[any]{Type: "answerResult", Payload: result})
		case "start", "advance", "close", "reset":
			if _, err := h.hostCommand(inbound.Type)(r.Context(), code, uid); err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		default:
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) hostCommand(kind string) hostCommandFunc {
	switch kind {
	case "start":
		return h.service.StartGame
	case "advance":
		return h.service.AdvancePhase
	case "close":
		return h.service.CloseQuestion
	default:
		return h.service.ResetGame
	}
}
