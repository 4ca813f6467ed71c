package command

import (
	"context"

	"github.com/kapu/mana-chat-bot-go/internal/adapter"
	"github.com/kapu/mana-chat-bot-go/internal/domain"
	"go.uber.org/zap"
)

// ChatBot is the reply sink a handler writes to. Delivery is fire-and-forget.
type ChatBot interface {
	SendMessage(text string)
}

// Ledger deducts points from a user's stored balance.
type Ledger interface {
	DeductPoints(ctx context.Context, user *domain.User, amount int, kind domain.PointsType) error
}

// Handler runs a command. A returned error or a panic is a handler fault.
type Handler func(ctx context.Context, msg *domain.ChatMessage, bot ChatBot) error

type Dependencies struct {
	Ledger    Ledger
	Modules   *ModuleRegistry
	Formatter *adapter.ResponseFormatter
	Logger    *zap.Logger
}
