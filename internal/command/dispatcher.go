package command

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kapu/mana-chat-bot-go/internal/adapter"
	"github.com/kapu/mana-chat-bot-go/internal/constants"
	"github.com/kapu/mana-chat-bot-go/internal/domain"
	"github.com/kapu/mana-chat-bot-go/internal/util"
	boterrors "github.com/kapu/mana-chat-bot-go/pkg/errors"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// Dispatcher matches chat messages against the registry and runs the
// commands that pass gating. Calls to Trigger are serialized.
type Dispatcher struct {
	mu        sync.Mutex
	registry  *Registry
	modules   *ModuleRegistry
	ledger    Ledger
	formatter *adapter.ResponseFormatter
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher with an empty registry. Missing
// dependencies fall back to an in-memory module set, the default formatter and
// a no-op logger. Without a ledger no points are deducted.
func NewDispatcher(deps *Dependencies) *Dispatcher {
	if deps == nil {
		deps = &Dependencies{}
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	modules := deps.Modules
	if modules == nil {
		modules = NewModuleRegistry(nil, logger)
	}
	formatter := deps.Formatter
	if formatter == nil {
		formatter = adapter.NewResponseFormatter(constants.CommandPrefix)
	}

	return &Dispatcher{
		registry:  NewRegistry(),
		modules:   modules,
		ledger:    deps.Ledger,
		formatter: formatter,
		logger:    logger,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

func (d *Dispatcher) Modules() *ModuleRegistry {
	return d.modules
}

// Define constructs a command and registers it with this dispatcher.
func (d *Dispatcher) Define(name string, handler Handler, opts ...Option) *Spec {
	return d.registry.Define(name, handler, opts...)
}

// Trigger tries every registered command against msg, in registration order,
// and returns how many handlers completed without a fault. A failure in one
// command never stops the others.
func (d *Dispatcher) Trigger(ctx context.Context, msg *domain.ChatMessage, bot ChatBot) int {
	if msg == nil || bot == nil {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	head, _ := util.SplitFirst(msg.Text)
	token := strings.ToLower(head)

	executed := 0
	for _, spec := range d.registry.Commands() {
		var (
			catcher panics.Catcher
			ran     bool
			err     error
		)
		catcher.Try(func() {
			ran, err = d.runCommand(ctx, spec, token, msg, bot)
		})

		if recovered := catcher.Recovered(); recovered != nil {
			err = recovered.AsError()
			d.logger.Debug("Trigger command panic stack",
				zap.String("command", spec.Name()),
				zap.ByteString("stack", recovered.Stack),
			)
		}
		if ran {
			executed++
		}
		if err != nil {
			d.logger.Warn("Trigger command failed",
				zap.String("command", spec.Name()),
				zap.String("user", msg.SenderName()),
				zap.Error(err),
			)
		}
	}
	return executed
}

// runCommand is the per-command unit: match, gate, charge check, run, deduct.
// ran reports a handler that finished without a fault.
func (d *Dispatcher) runCommand(ctx context.Context, spec *Spec, token string, msg *domain.ChatMessage, bot ChatBot) (ran bool, err error) {
	if !spec.Matches(token) {
		return false, nil
	}

	username := msg.SenderName()
	fields := []zap.Field{
		zap.String("command", spec.Name()),
		zap.String("text", msg.Text),
		zap.String("user", username),
	}

	if decision := EvaluateGating(spec, msg, d.modules); !decision.Allowed {
		d.logger.Debug("Reject command", append(fields, zap.String("reason", string(decision.Reason)))...)
		return false, nil
	}

	if cost := CheckCost(spec, msg.Sender); !cost.OK {
		bot.SendMessage(d.formatter.FormatShortage(username, spec.ManaCost(), spec.ElixirCost()))
		d.logger.Debug("Can't pay for trigger command", append(fields, zap.Stringer("shortage", cost.Shortage))...)
		return false, nil
	}

	d.logger.Debug("Trigger command", fields...)
	if err := d.invoke(ctx, spec, msg, bot); err != nil {
		d.logger.Error("Error during command execution",
			zap.String("command", spec.Name()),
			zap.String("user", username),
			zap.Error(err),
		)
		d.logger.Debug("Command fault detail", zap.String("command", spec.Name()), zap.String("detail", fmt.Sprintf("%+v", err)))
		return false, nil
	}

	amount, kind, ok := Deduction(spec, msg.Sender)
	if !ok || d.ledger == nil {
		return true, nil
	}
	if err := d.ledger.DeductPoints(ctx, msg.Sender, amount, kind); err != nil {
		return true, fmt.Errorf("deduct %d %s from %s: %w", amount, kind, username, err)
	}
	d.logger.Debug("Points deducted",
		zap.String("command", spec.Name()),
		zap.String("user", username),
		zap.Int("amount", amount),
		zap.Stringer("points", kind),
	)
	return true, nil
}

// invoke runs the handler inside its own fault boundary.
func (d *Dispatcher) invoke(ctx context.Context, spec *Spec, msg *domain.ChatMessage, bot ChatBot) error {
	var (
		catcher    panics.Catcher
		handlerErr error
	)
	catcher.Try(func() {
		handlerErr = spec.handler(ctx, msg, bot)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		d.logger.Debug("Command handler panic stack",
			zap.String("command", spec.Name()),
			zap.ByteString("stack", recovered.Stack),
		)
		return boterrors.NewCommandError(spec.Name(), msg.SenderName(), recovered.AsError())
	}
	if handlerErr != nil {
		return boterrors.NewCommandError(spec.Name(), msg.SenderName(), handlerErr)
	}
	return nil
}
