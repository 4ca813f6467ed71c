package config

import (
	"errors"
	"testing"

	boterrors "github.com/kapu/mana-chat-bot-go/pkg/errors"
)

func TestLoadGatewayDefaults(t *testing.T) {
	t.Setenv("TRANSPORT", "gateway")
	t.Setenv("POINTS_BACKEND", "memory")
	t.Setenv("DEFAULT_MODULES", "fun, games")
	t.Setenv("MODULE_PERSISTENCE", "false")
	t.Setenv("REDIS_PORT", "not-a-number")
	for _, key := range []string{"GATEWAY_BASE_URL", "GATEWAY_WS_URL", "LOG_LEVEL", "LOG_COMMANDS_DEBUG"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.BaseURL != "http://localhost:3000" || cfg.Gateway.WSURL != "ws://localhost:3000/ws" {
		t.Fatalf("unexpected gateway config %+v", cfg.Gateway)
	}
	if cfg.Modules.Persist {
		t.Fatalf("MODULE_PERSISTENCE=false should disable persistence")
	}
	if len(cfg.Modules.Default) != 2 || cfg.Modules.Default[1] != "games" {
		t.Fatalf("unexpected default modules %v", cfg.Modules.Default)
	}
	if cfg.Redis.Port != 6379 {
		t.Fatalf("invalid ints fall back to the default, got %d", cfg.Redis.Port)
	}
	if !cfg.Logging.CommandsDebug || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"twitch without user", Config{Transport: TransportTwitch, Points: PointsConfig{Backend: PointsMemory}}, "TWITCH_USERNAME"},
		{"twitch without channels", Config{
			Transport: TransportTwitch,
			Twitch:    TwitchConfig{Username: "bot", OAuthToken: "oauth:x"},
			Points:    PointsConfig{Backend: PointsMemory},
		}, "TWITCH_CHANNELS"},
		{"unknown transport", Config{Transport: "irc"}, "TRANSPORT"},
		{"unknown backend", Config{
			Transport: TransportGateway,
			Gateway:   GatewayConfig{BaseURL: "http://x", WSURL: "ws://x"},
			Points:    PointsConfig{Backend: "sqlite"},
		}, "POINTS_BACKEND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			var validationErr *boterrors.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Fatalf("unexpected field %q, want %q", validationErr.Field, tt.field)
			}
		})
	}

	valid := Config{
		Transport: TransportTwitch,
		Twitch:    TwitchConfig{Username: "bot", OAuthToken: "oauth:x", Channels: []string{"streamer"}},
		Points:    PointsConfig{Backend: PointsPostgres},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
