// Package twitch connects the bot to Twitch chat over IRC.
package twitch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adeithe/go-twitch/irc"
	"github.com/kapu/mana-chat-bot-go/internal/domain"
	"go.uber.org/zap"
)

type Config struct {
	Username   string
	OAuthToken string
	Channels   []string
}

type Transport struct {
	cfg    Config
	logger *zap.Logger

	mu   sync.RWMutex
	conn *irc.Conn
}

func NewTransport(cfg Config, logger *zap.Logger) *Transport {
	return &Transport{cfg: cfg, logger: logger.Named("twitch")}
}

// Start joins the configured channels and forwards chat messages to handle
// until ctx is done.
func (t *Transport) Start(ctx context.Context, handle func(domain.InboundMessage)) error {
	if len(t.cfg.Channels) == 0 {
		return errors.New("twitch: no channels configured")
	}
	if t.cfg.Username == "" || t.cfg.OAuthToken == "" {
		return errors.New("twitch: username and oauth token are required")
	}

	conn := &irc.Conn{}
	if err := conn.SetLogin(t.cfg.Username, t.cfg.OAuthToken); err != nil {
		return fmt.Errorf("twitch: set login: %w", err)
	}

	conn.OnMessage(func(cm irc.ChatMessage) {
		handle(toInbound(cm))
	})

	if err := conn.Connect(); err != nil {
		return fmt.Errorf("twitch: connect: %w", err)
	}
	if err := conn.Join(t.cfg.Channels...); err != nil {
		conn.Close()
		return fmt.Errorf("twitch: join: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	t.logger.Info("Twitch chat connected",
		zap.String("username", t.cfg.Username),
		zap.Strings("channels", t.cfg.Channels),
	)

	<-ctx.Done()
	return nil
}

func (t *Transport) SendMessage(_ context.Context, channel, text string) error {
	t.mu.RLock()
	conn := t.conn
	t.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return errors.New("twitch: connection is not open")
	}
	return conn.Say(channel, text)
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
		t.logger.Info("Twitch chat disconnected")
	}
	return nil
}

// toInbound keys the sender by login name. Display names can be changed or
// localized, so they would not identify a points account.
func toInbound(cm irc.ChatMessage) domain.InboundMessage {
	sender := cm.Sender
	return domain.InboundMessage{
		Platform:  domain.PlatformTwitch,
		Channel:   cm.Channel,
		Username:  sender.Username,
		Text:      cm.Text,
		Roles:     senderRoles(sender.IsBroadcaster, sender.IsModerator, sender.IsVIP),
		Timestamp: time.Now(),
	}
}

// senderRoles maps Twitch badges to chat roles. The broadcaster also owns the
// channel, so it gets the streamer role.
func senderRoles(broadcaster, moderator, vip bool) []string {
	var roles []string
	if broadcaster {
		roles = append(roles, string(domain.RoleBroadcaster), string(domain.RoleStreamer))
	}
	if moderator {
		roles = append(roles, string(domain.RoleModerator))
	}
	if vip {
		roles = append(roles, string(domain.RoleVIP))
	}
	return roles
}

// NormalizeChannels lowercases channel names and strips a leading '#'.
func NormalizeChannels(channels []string) []string {
	out := make([]string, 0, len(channels))
	for _, channel := range channels {
		channel = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(channel), "#"))
		if channel != "" {
			out = append(out, channel)
		}
	}
	return out
}
