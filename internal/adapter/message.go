package adapter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kapu/mana-chat-bot-go/internal/domain"
	boterrors "github.com/kapu/mana-chat-bot-go/pkg/errors"
)

var controlCharsPattern = regexp.MustCompile(`[\x00-\x08\x0B-\x1F\x7F]`)

// ErrEmptyMessage is returned for messages without text.
var ErrEmptyMessage = errors.New("empty message")

// UserSource resolves chat users together with their point balances.
type UserSource interface {
	GetOrCreate(ctx context.Context, name string) (*domain.User, error)
}

// MessageAdapter converts transport messages into chat messages with a
// resolved sender.
type MessageAdapter struct {
	users UserSource
}

// NewMessageAdapter creates a new MessageAdapter
func NewMessageAdapter(users UserSource) *MessageAdapter {
	return &MessageAdapter{users: users}
}

// ToChatMessage sanitizes the inbound message and loads its sender.
func (ma *MessageAdapter) ToChatMessage(ctx context.Context, in *domain.InboundMessage) (*domain.ChatMessage, error) {
	if in == nil {
		return nil, ErrEmptyMessage
	}

	text := strings.TrimSpace(controlCharsPattern.ReplaceAllString(in.Text, " "))
	if text == "" {
		return nil, ErrEmptyMessage
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, boterrors.NewValidationError("sender name is required", "username", in.Username)
	}

	user, err := ma.users.GetOrCreate(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}

	roles := make([]domain.Role, 0, len(in.Roles))
	for _, role := range in.Roles {
		roles = append(roles, domain.Role(role))
	}

	timestamp := in.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return &domain.ChatMessage{
		Platform:  in.Platform,
		Channel:   in.Channel,
		Text:      text,
		Sender:    user,
		Roles:     domain.NewRoleSet(roles...),
		Timestamp: timestamp,
	}, nil
}
