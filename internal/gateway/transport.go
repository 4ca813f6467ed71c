package gateway

import (
	"context"
	"fmt"

	"github.com/kapu/mana-chat-bot-go/internal/constants"
	"github.com/kapu/mana-chat-bot-go/internal/domain"
	"go.uber.org/zap"
)

// Transport receives chat events over the gateway websocket and replies via
// its HTTP API.
type Transport struct {
	client *Client
	ws     *WebSocket
	logger *zap.Logger
}

func NewTransport(baseURL, wsURL string, logger *zap.Logger) *Transport {
	logger = logger.Named("gateway")
	return &Transport{
		client: NewClient(baseURL, logger),
		ws: NewWebSocket(
			wsURL,
			constants.WebSocketConfig.MaxReconnectAttempts,
			constants.WebSocketConfig.ReconnectDelay,
			logger,
		),
		logger: logger,
	}
}

// Start connects and forwards events to handle until ctx is done.
func (t *Transport) Start(ctx context.Context, handle func(domain.InboundMessage)) error {
	unsubscribe := t.ws.OnMessage(func(message *Message) {
		handle(message.ToInbound())
	})
	defer unsubscribe()

	if err := t.ws.Connect(ctx); err != nil {
		return fmt.Errorf("gateway: connect: %w", err)
	}

	<-ctx.Done()
	return nil
}

func (t *Transport) SendMessage(ctx context.Context, channel, text string) error {
	return t.client.SendMessage(ctx, channel, text)
}

func (t *Transport) Close() error {
	return t.ws.Disconnect()
}
