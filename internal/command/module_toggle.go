package command

import (
	"context"

	"github.com/kapu/mana-chat-bot-go/internal/domain"
	"github.com/kapu/mana-chat-bot-go/internal/util"
)

func (d *Dispatcher) moduleOn(ctx context.Context, msg *domain.ChatMessage, bot ChatBot) error {
	_, module := util.SplitFirst(msg.Text)
	if module == "" {
		return nil
	}

	d.modules.Enable(ctx, module)
	bot.SendMessage(d.formatter.FormatModuleEnabled(module))
	return nil
}

func (d *Dispatcher) moduleOff(ctx context.Context, msg *domain.ChatMessage, bot ChatBot) error {
	_, module := util.SplitFirst(msg.Text)
	if module == "" {
		return nil
	}

	d.modules.Disable(ctx, module)
	bot.SendMessage(d.formatter.FormatModuleDisabled(module))
	return nil
}
