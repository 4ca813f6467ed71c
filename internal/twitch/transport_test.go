package twitch

import (
	"context"
	"testing"

	"github.com/adeithe/go-twitch/irc"
	"github.com/kapu/mana-chat-bot-go/internal/domain"
	"go.uber.org/zap"
)

func TestSenderRoles(t *testing.T) {
	tests := []struct {
		name                        string
		broadcaster, moderator, vip bool
		want                        []string
	}{
		{"viewer", false, false, false, nil},
		{"broadcaster", true, false, false, []string{"broadcaster", "streamer"}},
		{"mod and vip", false, true, true, []string{"moderator", "vip"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := senderRoles(tt.broadcaster, tt.moderator, tt.vip)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestToInboundUsesLoginName(t *testing.T) {
	in := toInbound(irc.ChatMessage{
		Channel: "streamer",
		Text:    "!help",
		Sender: irc.ChatSender{
			Username:    "alice_01",
			DisplayName: "Алиса",
			IsModerator: true,
		},
	})

	if in.Username != "alice_01" {
		t.Fatalf("expected login name, got %q", in.Username)
	}
	if in.Platform != domain.PlatformTwitch || in.Channel != "streamer" || in.Text != "!help" {
		t.Fatalf("unexpected message %+v", in)
	}
	if len(in.Roles) != 1 || in.Roles[0] != string(domain.RoleModerator) {
		t.Fatalf("unexpected roles %v", in.Roles)
	}
	if in.Timestamp.IsZero() {
		t.Fatalf("timestamp should be set")
	}
}

func TestNormalizeChannels(t *testing.T) {
	got := NormalizeChannels([]string{" #Streamer ", "", "other"})
	if len(got) != 2 || got[0] != "streamer" || got[1] != "other" {
		t.Fatalf("unexpected channels %v", got)
	}
}

func TestStartValidatesConfig(t *testing.T) {
	transport := NewTransport(Config{Username: "bot", OAuthToken: "oauth:x"}, zap.NewNop())
	if err := transport.Start(context.Background(), nil); err == nil {
		t.Fatalf("expected an error without channels")
	}

	transport = NewTransport(Config{Channels: []string{"streamer"}}, zap.NewNop())
	if err := transport.Start(context.Background(), nil); err == nil {
		t.Fatalf("expected an error without credentials")
	}
}

func TestSendMessageWithoutConnection(t *testing.T) {
	transport := NewTransport(Config{}, zap.NewNop())
	if err := transport.SendMessage(context.Background(), "streamer", "hi"); err == nil {
		t.Fatalf("expected an error when not connected")
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
