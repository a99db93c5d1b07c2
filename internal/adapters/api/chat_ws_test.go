package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appauth "chatgate/internal/application/auth"
	domainauth "chatgate/internal/domain/auth"

	"github.com/gorilla/websocket"
)

func dialChat(t *testing.T, f *handlerFixture, cookie string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(f.engine)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	header := http.Header{}
	if cookie != "" {
		header.Set("Cookie", f.cfg.CookieName+"="+cookie)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("Failed to dial (status %d): %v", status, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func chatCookie(t *testing.T, f *handlerFixture, oid string) string {
	t.Helper()

	codec := appauth.TokenCodec{Secret: f.cfg.SessionSecret, TenantID: f.cfg.TenantID}
	token, err := codec.Mint(&domainauth.IdentityClaims{TenantID: f.cfg.TenantID, ObjectID: oid}, time.Now())
	if err != nil {
		t.Fatalf("Failed to mint token: %v", err)
	}
	return token
}

func TestChatWebSocket_GreetsAndEchoes(t *testing.T) {
	f := newHandlerFixture(t)
	conn := dialChat(t, f, chatCookie(t, f, "user-42"))

	_, greeting, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read greeting: %v", err)
	}
	if !strings.HasPrefix(string(greeting), "Welcome") {
		t.Errorf("Unexpected greeting: %q", greeting)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("Failed to write message: %v", err)
	}
	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read reply: %v", err)
	}
	if string(reply) != "You said: hello" {
		t.Errorf("Unexpected reply: %q", reply)
	}
}

func TestChatWebSocket_FirstMessageStartsSession(t *testing.T) {
	f := newHandlerFixture(t)
	conn := dialChat(t, f, chatCookie(t, f, "user-42"))

	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("Failed to read greeting: %v", err)
	}

	for _, msg := range []string{"first message", "second message"} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("Failed to write message: %v", err)
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("Failed to read reply: %v", err)
		}
	}

	// Two turns, one session record, titled after the opening message
	sessions, err := f.sessions.ListSessions(context.Background(), "user-42", 0, 0)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session record, got %d", len(sessions))
	}
	if sessions[0].Title != "first message" {
		t.Errorf("Expected title from first message, got %q", sessions[0].Title)
	}
}

func TestChatWebSocket_NoCookie(t *testing.T) {
	f := newHandlerFixture(t)

	server := httptest.NewServer(f.engine)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("Expected handshake to fail without a cookie")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 response, got %+v", resp)
	}
}

func TestChatPage(t *testing.T) {
	f := newHandlerFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/ws/chat") {
		t.Error("Expected the page to reference the websocket endpoint")
	}
}
