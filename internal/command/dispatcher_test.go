package command

import (
	"context"
	"errors"
	"testing"

	"github.com/kapu/mana-chat-bot-go/internal/domain"
	boterrors "github.com/kapu/mana-chat-bot-go/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestDispatcher(ledger Ledger) (*Dispatcher, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewDispatcher(&Dependencies{Ledger: ledger, Logger: zap.New(core)}), logs
}

func TestTriggerIgnoresNonMatchingMessages(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	calls := 0
	d.Define("dice", func(context.Context, *domain.ChatMessage, ChatBot) error {
		calls++
		return nil
	}, WithAliases("roll"))

	bot := &recordingBot{}
	for _, text := range []string{"hello", "dice", "!dices", "say !dice", "", "!"} {
		if n := d.Trigger(context.Background(), message(text, nil), bot); n != 0 {
			t.Fatalf("%q triggered %d commands", text, n)
		}
	}
	if calls != 0 || len(bot.messages) != 0 {
		t.Fatalf("unexpected activity: calls=%d replies=%v", calls, bot.messages)
	}
}

func TestTriggerMatchesCaseInsensitiveFirstToken(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	var got []string
	d.Define("dice", func(_ context.Context, msg *domain.ChatMessage, _ ChatBot) error {
		got = append(got, msg.Text)
		return nil
	}, WithAliases("roll"))

	bot := &recordingBot{}
	d.Trigger(context.Background(), message("!DICE 20", nil), bot)
	d.Trigger(context.Background(), message("  !Roll", nil), bot)

	if len(got) != 2 {
		t.Fatalf("expected 2 executions, got %v", got)
	}
}

func TestTriggerSplitsOnUnicodeWhitespace(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	d.Define("dice", noop)

	bot := &recordingBot{}
	for _, text := range []string{"!dice x", "!dice\u00a0x", "!dice\u3000x", "!dice\u2003x"} {
		if n := d.Trigger(context.Background(), message(text, nil), bot); n != 1 {
			t.Fatalf("%q executed %d commands, want 1", text, n)
		}
	}
}

func TestTriggerRunsEveryMatchingCommand(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	var order []string
	d.Define("dice", func(context.Context, *domain.ChatMessage, ChatBot) error {
		order = append(order, "first")
		return nil
	})
	d.Define("other", func(context.Context, *domain.ChatMessage, ChatBot) error {
		order = append(order, "other")
		return nil
	})
	d.Define("dice", func(context.Context, *domain.ChatMessage, ChatBot) error {
		order = append(order, "second")
		return nil
	})

	if n := d.Trigger(context.Background(), message("!dice", nil), &recordingBot{}); n != 2 {
		t.Fatalf("expected 2 executions, got %d", n)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestTriggerShortageSendsOneNoticeAndSkipsHandler(t *testing.T) {
	ledger := &fakeLedger{}
	d, logs := newTestDispatcher(ledger)
	calls := 0
	d.Define("spell", func(context.Context, *domain.ChatMessage, ChatBot) error {
		calls++
		return nil
	}, WithManaCost(2), WithElixirCost(3))

	bot := &recordingBot{}
	user := &domain.User{Name: "alice", Mana: 1, Elixir: 2}
	d.Trigger(context.Background(), message("!spell", user), bot)

	if calls != 0 {
		t.Fatalf("handler must not run on shortage")
	}
	if len(bot.messages) != 1 || bot.messages[0] != "@alice не хватает (3 ep или 2 mp)" {
		t.Fatalf("unexpected replies %v", bot.messages)
	}
	if len(ledger.calls) != 0 {
		t.Fatalf("nothing should be deducted")
	}
	if logs.FilterMessage("Can't pay for trigger command").Len() != 1 {
		t.Fatalf("expected a debug entry for the shortage")
	}
}

func TestTriggerGatingRejectionIsSilent(t *testing.T) {
	d, logs := newTestDispatcher(nil)
	d.Define("ban", noop, OwnerOnly(), WithManaCost(100))
	d.Define("game", noop, InModule("games"))

	bot := &recordingBot{}
	d.Trigger(context.Background(), message("!ban", nil), bot)
	d.Trigger(context.Background(), message("!game", nil), bot)

	if len(bot.messages) != 0 {
		t.Fatalf("rejections must not reply, got %v", bot.messages)
	}
	rejects := logs.FilterMessage("Reject command")
	if rejects.Len() != 2 || rejects.FilterLevelExact(zapcore.DebugLevel).Len() != 2 {
		t.Fatalf("expected two debug rejections, got %d", rejects.Len())
	}
}

func TestTriggerDeductsManaFirst(t *testing.T) {
	ledger := &fakeLedger{}
	d, _ := newTestDispatcher(ledger)
	d.Define("spell", noop, WithManaCost(2), WithElixirCost(3))

	user := &domain.User{Name: "alice", Mana: 5, Elixir: 5}
	if n := d.Trigger(context.Background(), message("!spell", user), &recordingBot{}); n != 1 {
		t.Fatalf("expected one execution, got %d", n)
	}

	if len(ledger.calls) != 1 {
		t.Fatalf("expected exactly one deduction, got %v", ledger.calls)
	}
	if got := ledger.calls[0]; got.amount != 2 || got.kind != domain.PointsMana || got.user != "alice" {
		t.Fatalf("unexpected deduction %+v", got)
	}
	if user.Mana != 3 || user.Elixir != 5 {
		t.Fatalf("unexpected balances mana=%d elixir=%d", user.Mana, user.Elixir)
	}
}

func TestTriggerDeductsElixirWhenManaShort(t *testing.T) {
	ledger := &fakeLedger{}
	d, _ := newTestDispatcher(ledger)
	d.Define("spell", noop, WithManaCost(2), WithElixirCost(3))

	d.Trigger(context.Background(), message("!spell", &domain.User{Name: "bob", Mana: 1, Elixir: 4}), &recordingBot{})

	if len(ledger.calls) != 1 || ledger.calls[0].kind != domain.PointsElixir || ledger.calls[0].amount != 3 {
		t.Fatalf("unexpected deductions %v", ledger.calls)
	}
}

func TestTriggerIsolatesHandlerFaults(t *testing.T) {
	ledger := &fakeLedger{}
	d, logs := newTestDispatcher(ledger)
	d.Define("dice", func(context.Context, *domain.ChatMessage, ChatBot) error {
		return errors.New("no dice")
	}, WithManaCost(1))
	d.Define("dice", func(context.Context, *domain.ChatMessage, ChatBot) error {
		panic("kaboom")
	}, WithManaCost(1))
	ranLast := false
	d.Define("dice", func(_ context.Context, _ *domain.ChatMessage, bot ChatBot) error {
		ranLast = true
		bot.SendMessage("rolled")
		return nil
	})

	bot := &recordingBot{}
	n := d.Trigger(context.Background(), message("!dice", &domain.User{Name: "alice", Mana: 10}), bot)

	if n != 1 || !ranLast {
		t.Fatalf("the healthy command should still run, executed=%d", n)
	}
	if len(ledger.calls) != 0 {
		t.Fatalf("faulting commands must not be charged, got %v", ledger.calls)
	}
	if len(bot.messages) != 1 || bot.messages[0] != "rolled" {
		t.Fatalf("unexpected replies %v", bot.messages)
	}

	faults := logs.FilterMessage("Error during command execution")
	if faults.Len() != 2 || faults.FilterLevelExact(zapcore.ErrorLevel).Len() != 2 {
		t.Fatalf("expected two error-level fault entries, got %d", faults.Len())
	}
	for _, entry := range faults.All() {
		err, ok := entry.ContextMap()["error"].(string)
		if !ok || err == "" {
			t.Fatalf("fault entry without error: %#v", entry.ContextMap())
		}
	}
}

func TestInvokeWrapsFaultsAsCommandErrors(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	spec := NewSpec("boom", func(context.Context, *domain.ChatMessage, ChatBot) error {
		panic("kaboom")
	})

	err := d.invoke(context.Background(), spec, message("!boom", &domain.User{Name: "alice"}), &recordingBot{})

	var cmdErr *boterrors.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if cmdErr.Command != "boom" || cmdErr.User != "alice" {
		t.Fatalf("unexpected error fields %+v", cmdErr)
	}
}

func TestTriggerLedgerFailureIsLoggedAndLoopContinues(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("db down")}
	d, logs := newTestDispatcher(ledger)
	d.Define("spell", noop, WithManaCost(1))
	second := false
	d.Define("spell", func(context.Context, *domain.ChatMessage, ChatBot) error {
		second = true
		return nil
	})

	n := d.Trigger(context.Background(), message("!spell", &domain.User{Name: "alice", Mana: 1}), &recordingBot{})

	if n != 2 || !second {
		t.Fatalf("expected both commands to run, executed=%d", n)
	}
	if logs.FilterMessage("Trigger command failed").FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Fatalf("expected a warning for the failed deduction")
	}
}

type panickingLedger struct{}

func (panickingLedger) DeductPoints(context.Context, *domain.User, int, domain.PointsType) error {
	panic("ledger exploded")
}

func TestTriggerRecoversFaultsOutsideHandler(t *testing.T) {
	d, logs := newTestDispatcher(panickingLedger{})
	d.Define("spell", noop, WithManaCost(1))
	after := false
	d.Define("spell", func(context.Context, *domain.ChatMessage, ChatBot) error {
		after = true
		return nil
	})

	d.Trigger(context.Background(), message("!spell", &domain.User{Name: "alice", Mana: 1}), &recordingBot{})

	if !after {
		t.Fatalf("loop must continue after a fault in the command unit")
	}
	if logs.FilterMessage("Trigger command failed").FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Fatalf("expected a warning for the recovered fault")
	}
}

func TestTriggerWithoutLedgerStillRuns(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	d.Define("spell", noop, WithManaCost(1))

	user := &domain.User{Name: "alice", Mana: 1}
	if n := d.Trigger(context.Background(), message("!spell", user), &recordingBot{}); n != 1 {
		t.Fatalf("expected one execution, got %d", n)
	}
	if user.Mana != 1 {
		t.Fatalf("balances change only through a ledger")
	}
}

func TestTriggerNilInputs(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	d.Define("dice", noop)

	if d.Trigger(context.Background(), nil, &recordingBot{}) != 0 {
		t.Fatalf("nil message should be ignored")
	}
	if d.Trigger(context.Background(), message("!dice", nil), nil) != 0 {
		t.Fatalf("nil bot should be ignored")
	}
}
