package adapter

import (
	"fmt"
	"strings"

	"github.com/kapu/mana-chat-bot-go/internal/constants"
)

// ResponseFormatter formats bot responses
type ResponseFormatter struct {
	prefix string
}

// NewResponseFormatter creates a new ResponseFormatter
func NewResponseFormatter(prefix string) *ResponseFormatter {
	if strings.TrimSpace(prefix) == "" {
		prefix = constants.CommandPrefix
	}
	return &ResponseFormatter{prefix: prefix}
}

// Prefix returns the trigger prefix used in help tokens.
func (f *ResponseFormatter) Prefix() string {
	return f.prefix
}

// HelpToken renders a command name the way users type it.
func (f *ResponseFormatter) HelpToken(name string) string {
	return f.prefix + name
}

// FormatShortage builds the notice sent when a user cannot pay for a command.
// A zero cost means that currency is not accepted.
func (f *ResponseFormatter) FormatShortage(username string, manaCost, elixirCost int) string {
	switch {
	case manaCost > 0 && elixirCost > 0:
		return fmt.Sprintf("@%s не хватает (%d ep или %d mp)", username, elixirCost, manaCost)
	case elixirCost > 0:
		return fmt.Sprintf("@%s не хватает (%d ep)", username, elixirCost)
	case manaCost > 0:
		return fmt.Sprintf("@%s не хватает (%d mp)", username, manaCost)
	default:
		return ""
	}
}

// FormatHelp joins one module's help tokens. The marker keeps the reply from
// being matched as a command.
func (f *ResponseFormatter) FormatHelp(tokens []string) string {
	return constants.HelpMarker + strings.Join(tokens, " ")
}

func (f *ResponseFormatter) FormatNoCommands() string {
	return "No available commands"
}

func (f *ResponseFormatter) FormatModuleEnabled(module string) string {
	return fmt.Sprintf("Module %s on", module)
}

func (f *ResponseFormatter) FormatModuleDisabled(module string) string {
	return fmt.Sprintf("Module %s off", module)
}
