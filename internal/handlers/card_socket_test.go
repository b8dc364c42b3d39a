package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Lixing-Zhang/hobbyshop/internal/admin"
	"github.com/Lixing-Zhang/hobbyshop/internal/auth"
	"github.com/Lixing-Zhang/hobbyshop/internal/middleware"
	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/Lixing-Zhang/hobbyshop/internal/repository"
	"github.com/Lixing-Zhang/hobbyshop/internal/service"
	"github.com/Lixing-Zhang/hobbyshop/internal/storage"
	"github.com/Lixing-Zhang/hobbyshop/internal/tcg"
	"github.com/Lixing-Zhang/hobbyshop/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

func newSocketServer(t *testing.T, searcher tcg.Searcher) (*httptest.Server, string, *admin.Workspaces) {
	t.Helper()
	log := logger.New("error")

	gate := auth.NewGate(storage.NewMemoryStorage(), "admin", "hobbyshop123", log)
	session, err := gate.Login(context.Background(), "admin", "hobbyshop123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	registry := admin.NewWorkspaces(service.NewProductService(repository.NewInMemoryProductRepository(), log), log)
	handler := NewCardSocketHandler(registry, tcg.DefaultCatalog(), searcher, 50*time.Millisecond, []string{"*"}, log)

	r := chi.NewRouter()
	r.Use(middleware.Logger(log))
	r.With(middleware.RequireAdmin(gate, log)).Get("/api/admin/tcg/ws", handler.ServeHTTP)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, session.Token, registry
}

func dialSocket(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/admin/tcg/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("Dial() error = %v (status %d)", err, status)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) CardEvent {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event CardEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return event
}

func TestCardSocket_DebouncedSearch(t *testing.T) {
	searcher := &stubSearcher{cards: []models.CardSummary{{ID: "OP01-001", Name: "Roronoa Zoro"}}}
	server, token, registry := newSocketServer(t, searcher)
	conn := dialSocket(t, server, token)

	for _, q := range []string{"z", "zo", "zoro"} {
		if err := conn.WriteJSON(tcg.State{Query: q}); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
	}

	event := readEvent(t, conn)
	if event.Kind != tcg.UpdateResults {
		t.Fatalf("expected results, got %s (%s)", event.Kind, event.Error)
	}
	if event.Query != "zoro" || len(event.Cards) != 1 {
		t.Errorf("unexpected event %+v", event)
	}
	if n := searcher.count(); n != 1 {
		t.Errorf("expected a single search, got %d", n)
	}

	ws := registry.For(token, nil)
	if len(ws.State().Results) != 1 {
		t.Error("expected results to reach the admin workspace")
	}
}

func TestCardSocket_ClearedAndComingSoon(t *testing.T) {
	server, token, _ := newSocketServer(t, &stubSearcher{})
	conn := dialSocket(t, server, token)

	if err := conn.WriteJSON(tcg.State{Category: "Mitos y leyendas (Coming soon)", Query: "x"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if event := readEvent(t, conn); event.Kind != tcg.UpdateComingSoon {
		t.Errorf("expected coming_soon, got %s", event.Kind)
	}

	if err := conn.WriteJSON(tcg.State{Category: "One Piece", Query: ""}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if event := readEvent(t, conn); event.Kind != tcg.UpdateCleared {
		t.Errorf("expected cleared, got %s", event.Kind)
	}

	if err := conn.WriteJSON(tcg.State{Category: "Yu-Gi-Oh", Query: "x"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	event := readEvent(t, conn)
	if event.Kind != tcg.UpdateError || event.Error == "" {
		t.Errorf("expected error event, got %+v", event)
	}
}

func TestCardSocket_RequiresSession(t *testing.T) {
	server, _, _ := newSocketServer(t, &stubSearcher{})

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/admin/tcg/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail without a session")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %v", resp)
	}
}

func TestCardSocket_ClosedOnLogout(t *testing.T) {
	searcher := &stubSearcher{cards: []models.CardSummary{{ID: "OP01-001", Name: "Roronoa Zoro"}}}
	server, token, registry := newSocketServer(t, searcher)
	conn := dialSocket(t, server, token)

	if err := conn.WriteJSON(tcg.State{Query: "zoro"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if event := readEvent(t, conn); event.Kind != tcg.UpdateResults {
		t.Fatalf("expected results, got %s", event.Kind)
	}

	registry.Discard(token)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
	if n := searcher.count(); n != 1 {
		t.Errorf("expected no searches after logout, got %d", n)
	}
}
