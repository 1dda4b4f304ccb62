package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"healthmate-backend/internal/handlers"
	"healthmate-backend/internal/middleware"
	"healthmate-backend/internal/models"
	"healthmate-backend/internal/services"
)

const (
	maxMessageBytes = 64 * 1024
	writeWait       = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type clientFrame struct {
	Message string `json:"message"`
}

type serverFrame struct {
	Type  string           `json:"type"`
	Turn  *models.Turn     `json:"turn,omitempty"`
	Error *models.APIError `json:"error,omitempty"`
}

// ChatHandler serves live chat over a WebSocket. Frames on one connection are
// handled strictly in order, one dispatch at a time.
type ChatHandler struct {
	service *services.HealthService
	tokens  *middleware.SessionTokens

	mu          sync.Mutex
	connections map[*websocket.Conn]uuid.UUID
}

func NewChatHandler(service *services.HealthService, tokens *middleware.SessionTokens) *ChatHandler {
	return &ChatHandler{
		service:     service,
		tokens:      tokens,
		connections: make(map[*websocket.Conn]uuid.UUID),
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.tokens.Parse(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := h.service.Session(r.Context(), sessionID); err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.register(sessionID, conn)
	defer h.unregister(conn)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.readLoop(ctx, r, sessionID, conn)
}

func (h *ChatHandler) readLoop(ctx context.Context, r *http.Request, sessionID uuid.UUID, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageBytes)

	for {
		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("session_id", sessionID.String()).Msg("websocket read ended")
			}
			return
		}

		pair, err := h.service.Exchange(ctx, sessionID, frame.Message)
		if err != nil {
			apiErr := handlers.ErrorBody(err, r)
			if werr := h.send(conn, serverFrame{Type: "error", Error: &apiErr}); werr != nil {
				return
			}
			continue
		}

		for _, turn := range pair {
			if err := h.send(conn, serverFrame{Type: "turn", Turn: &turn}); err != nil {
				return
			}
		}
	}
}

func (h *ChatHandler) send(conn *websocket.Conn, frame serverFrame) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}

func (h *ChatHandler) register(sessionID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[conn] = sessionID
	log.Info().Str("session_id", sessionID.String()).Int("open", len(h.connections)).Msg("websocket connected")
}

func (h *ChatHandler) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	if sessionID, ok := h.connections[conn]; ok {
		delete(h.connections, conn)
		log.Info().Str("session_id", sessionID.String()).Int("open", len(h.connections)).Msg("websocket disconnected")
	}
}

// CloseAll sends a going-away close frame to every open connection. Used on
// shutdown, since the HTTP server does not track hijacked connections.
func (h *ChatHandler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range h.connections {
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
	}
}
