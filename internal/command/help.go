package command

import (
	"context"

	"github.com/kapu/mana-chat-bot-go/internal/domain"
)

// RegisterBuiltins defines help, module_on and module_off on d.
func RegisterBuiltins(d *Dispatcher) {
	d.Define("help", d.help, WithAliases("помощь"))
	d.Define("module_on", d.moduleOn, OwnerOnly())
	d.Define("module_off", d.moduleOff, OwnerOnly())
}

// help lists every command the sender may run, one reply per module. Costs
// are not considered.
func (d *Dispatcher) help(_ context.Context, msg *domain.ChatMessage, bot ChatBot) error {
	var order []string
	byModule := make(map[string][]string)

	for _, spec := range d.registry.Commands() {
		if !EvaluateGating(spec, msg, d.modules).Allowed {
			continue
		}
		module := spec.Module()
		if _, seen := byModule[module]; !seen {
			order = append(order, module)
		}
		byModule[module] = append(byModule[module], spec.HelpText())
	}

	if len(order) == 0 {
		bot.SendMessage(d.formatter.FormatNoCommands())
		return nil
	}

	for _, module := range order {
		bot.SendMessage(d.formatter.FormatHelp(byModule[module]))
	}
	return nil
}
