package constants

import "time"

// CommandPrefix marks a chat message as a command invocation.
const CommandPrefix = "!"

// DefaultModule is active when the bot starts.
const DefaultModule = "base"

// HelpMarker is prepended to help replies so the bot never re-triggers on its
// own output.
const HelpMarker = "\u200c"

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
	HandshakeTimeout:     10 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
	ModulesKey   string
}{
	ReadyTimeout: 5 * time.Second,
	ModulesKey:   "chatbot:modules:active",
}

var PostgresConfig = struct {
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
	MaxOpenConns   int
	MaxIdleConns   int
}{
	ConnectTimeout: 5 * time.Second,
	QueryTimeout:   3 * time.Second,
	MaxOpenConns:   10,
	MaxIdleConns:   2,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 3,                // consecutive failures before the circuit opens
	ResetTimeout:     30 * time.Second, // wait before a half-open probe
}

var DispatchConfig = struct {
	QueueSize       int
	ReplyTimeout    time.Duration
	ShutdownTimeout time.Duration
}{
	QueueSize:       64,
	ReplyTimeout:    5 * time.Second,
	ShutdownTimeout: 5 * time.Second,
}

var StringLimits = struct {
	LoggedPayload int
}{
	LoggedPayload: 200,
}
