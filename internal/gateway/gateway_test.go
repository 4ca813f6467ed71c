package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/mana-chat-bot-go/internal/domain"
	boterrors "github.com/kapu/mana-chat-bot-go/pkg/errors"
	"go.uber.org/zap"
)

func TestMessageToInbound(t *testing.T) {
	sender := " alice "
	msg := &Message{
		Msg:       "!help",
		Room:      "lobby",
		Sender:    &sender,
		Roles:     []string{"moderator"},
		CreatedAt: "2024-03-09T14:05:07Z",
	}

	in := msg.ToInbound()
	if in.Platform != domain.PlatformGateway || in.Channel != "lobby" || in.Username != "alice" || in.Text != "!help" {
		t.Fatalf("unexpected inbound %+v", in)
	}
	if len(in.Roles) != 1 || in.Roles[0] != "moderator" {
		t.Fatalf("unexpected roles %v", in.Roles)
	}
	if !in.Timestamp.Equal(time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %v", in.Timestamp)
	}
}

func TestClientSendMessage(t *testing.T) {
	var got ReplyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/reply" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	if err := client.SendMessage(context.Background(), "lobby", "Module fun on"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got.Type != "text" || got.Channel != "lobby" || got.Data != "Module fun on" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestClientSendMessageReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, strings.Repeat("x", 500), http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewClient(server.URL, zap.NewNop()).SendMessage(context.Background(), "lobby", "hi")

	var apiErr *boterrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
	if body := apiErr.Context["body"].(string); len(body) > 210 {
		t.Fatalf("error body should be truncated, got %d bytes", len(body))
	}
}

func TestTransportDeliversWebSocketMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteJSON(map[string]any{"msg": "!help", "room": "lobby", "sender": "alice", "roles": []string{"vip"}})

		// keep the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	transport := NewTransport(server.URL, wsURL, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan domain.InboundMessage, 1)
	done := make(chan error, 1)
	go func() {
		done <- transport.Start(ctx, func(in domain.InboundMessage) {
			received <- in
		})
	}()

	select {
	case in := <-received:
		if in.Username != "alice" || in.Text != "!help" || in.Channel != "lobby" {
			t.Fatalf("unexpected inbound %+v", in)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for message")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start returned %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if transport.ws.IsConnected() {
		t.Fatalf("websocket should be disconnected")
	}
}
