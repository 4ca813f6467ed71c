package gateway

import (
	"strings"
	"time"

	"github.com/kapu/mana-chat-bot-go/internal/domain"
)

type ReplyRequest struct {
	Type    string `json:"type"`
	Channel string `json:"room"`
	Data    string `json:"data"`
}

// Message is a chat event pushed by the gateway.
type Message struct {
	Msg       string   `json:"msg"`
	Room      string   `json:"room"`
	Sender    *string  `json:"sender,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// ToInbound converts the event into a transport-neutral message.
func (m *Message) ToInbound() domain.InboundMessage {
	in := domain.InboundMessage{
		Platform:  domain.PlatformGateway,
		Channel:   m.Room,
		Text:      m.Msg,
		Roles:     append([]string(nil), m.Roles...),
		Timestamp: time.Now(),
	}
	if m.Sender != nil {
		in.Username = strings.TrimSpace(*m.Sender)
	}
	if m.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, m.CreatedAt); err == nil {
			in.Timestamp = ts
		}
	}
	return in
}

type WebSocketState string

const (
	WSStateConnecting   WebSocketState = "CONNECTING"
	WSStateConnected    WebSocketState = "CONNECTED"
	WSStateDisconnected WebSocketState = "DISCONNECTED"
	WSStateReconnecting WebSocketState = "RECONNECTING"
	WSStateFailed       WebSocketState = "FAILED"
)

func (s WebSocketState) String() string {
	return string(s)
}
