package domain

import "time"

type Platform string

const (
	PlatformTwitch  Platform = "twitch"
	PlatformGateway Platform = "gateway"
)

// InboundMessage is a raw chat message as delivered by a transport, before the
// sender has been resolved to a User.
type InboundMessage struct {
	Platform  Platform
	Channel   string
	Username  string
	Text      string
	Roles     []string
	Timestamp time.Time
}

// ChatMessage is a chat message with a resolved sender. It is not modified
// while commands are dispatched against it.
type ChatMessage struct {
	Platform  Platform
	Channel   string
	Text      string
	Sender    *User
	Roles     RoleSet
	Timestamp time.Time
}

func NewChatMessage(text string, sender *User, roles ...Role) *ChatMessage {
	return &ChatMessage{
		Text:      text,
		Sender:    sender,
		Roles:     NewRoleSet(roles...),
		Timestamp: time.Now(),
	}
}

// SenderName returns the sender's name, or an empty string when unknown.
func (m *ChatMessage) SenderName() string {
	if m == nil || m.Sender == nil {
		return ""
	}
	return m.Sender.Name
}
