package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/hobbyshop/internal/admin"
	"github.com/Lixing-Zhang/hobbyshop/internal/apperr"
	"github.com/Lixing-Zhang/hobbyshop/internal/auth"
	"github.com/Lixing-Zhang/hobbyshop/internal/tcg"
	"github.com/gorilla/websocket"
)

const (
	socketWriteWait  = 10 * time.Second
	socketPongWait   = 60 * time.Second
	socketPingPeriod = 54 * time.Second
)

// CardEvent is pushed to the client whenever the search results change
type CardEvent struct {
	tcg.Update
	Error string `json:"error,omitempty"`
}

// CardSocketHandler serves GET /api/admin/tcg/ws. The client sends its
// search form ({category, query, byId}) on every keystroke; searches run
// once the form has been quiet for the debounce interval.
type CardSocketHandler struct {
	workspaces WorkspaceProvider
	cards      *tcg.Catalog
	searcher   tcg.Searcher
	debounce   time.Duration
	clock      tcg.Clock
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewCardSocketHandler creates the search socket handler. allowedOrigins
// follows the CORS list; "*" accepts any origin.
func NewCardSocketHandler(workspaces WorkspaceProvider, cards *tcg.Catalog, searcher tcg.Searcher, debounce time.Duration, allowedOrigins []string, logger *slog.Logger) *CardSocketHandler {
	return &CardSocketHandler{
		workspaces: workspaces,
		cards:      cards,
		searcher:   searcher,
		debounce:   debounce,
		clock:      tcg.RealClock(),
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowedOrigins) == 0 {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

func (h *CardSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		WriteServiceError(w, apperr.ErrUnauthorized, h.logger)
		return
	}
	ws := h.workspaces.For(session.Token, session)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// The socket outlives the request timeout
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	send := make(chan CardEvent, 16)
	publish := func(u tcg.Update) {
		if u.Kind == tcg.UpdateResults {
			ws.SetResults(u.Cards)
		} else {
			ws.SetResults(nil)
		}

		event := CardEvent{Update: u}
		if u.Err != nil {
			event.Error = u.Err.Error()
		}
		select {
		case send <- event:
		case <-ctx.Done():
		}
	}

	search := tcg.NewSession(ctx, h.cards, h.searcher, h.debounce, h.clock, publish, h.logger)
	defer search.Close()

	if current := ws.State().SearchCategory; current != "" {
		if err := search.SetCategory(current); err != nil {
			h.logger.Warn("stale search category", "category", current, "error", err)
		}
	}

	go h.writePump(ctx, conn, send)
	go h.closeOnRevoke(ctx, conn, ws)
	h.readPump(ctx, conn, ws, search, send)
}

// closeOnRevoke ends the socket when the owner logs out
func (h *CardSocketHandler) closeOnRevoke(ctx context.Context, conn *websocket.Conn, ws *admin.Workspace) {
	select {
	case <-ws.Done():
		h.logger.Info("closing card search socket after logout")
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session ended")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(socketWriteWait))
		conn.Close()
	case <-ctx.Done():
	}
}

func (h *CardSocketHandler) readPump(ctx context.Context, conn *websocket.Conn, ws *admin.Workspace, search *tcg.Session, send chan<- CardEvent) {
	conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(socketPongWait))
		return nil
	})

	for {
		var state tcg.State
		if err := conn.ReadJSON(&state); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("card search socket closed", "error", err)
			}
			return
		}

		if err := search.Apply(state); err != nil {
			current := search.State()
			event := CardEvent{
				Update: tcg.Update{Kind: tcg.UpdateError, Category: current.Category, Query: current.Query, ByID: current.ByID},
				Error:  err.Error(),
			}
			select {
			case send <- event:
			case <-ctx.Done():
				return
			}
			continue
		}

		if state.Category != "" {
			if err := ws.SetSearchCategory(search.State().Category); err != nil {
				h.logger.Warn("failed to record search category", "error", err)
			}
		}
	}
}

func (h *CardSocketHandler) writePump(ctx context.Context, conn *websocket.Conn, send <-chan CardEvent) {
	ticker := time.NewTicker(socketPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event := <-send:
			conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Warn("failed to push card results", "error", err)
				conn.Close()
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
