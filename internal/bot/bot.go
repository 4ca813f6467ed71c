package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kapu/mana-chat-bot-go/internal/adapter"
	"github.com/kapu/mana-chat-bot-go/internal/command"
	"github.com/kapu/mana-chat-bot-go/internal/constants"
	"github.com/kapu/mana-chat-bot-go/internal/domain"
	"github.com/kapu/mana-chat-bot-go/internal/util"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Transport is a chat connection: it delivers inbound events to handle and
// sends replies back to a channel.
type Transport interface {
	Start(ctx context.Context, handle func(domain.InboundMessage)) error
	SendMessage(ctx context.Context, channel, text string) error
	Close() error
}

type Dependencies struct {
	Logger         *zap.Logger
	Transport      Transport
	MessageAdapter *adapter.MessageAdapter
	Dispatcher     *command.Dispatcher
	QueueSize      int
}

// Bot feeds transport events through a single worker so commands run one at a
// time, in arrival order.
type Bot struct {
	logger     *zap.Logger
	transport  Transport
	adapter    *adapter.MessageAdapter
	dispatcher *command.Dispatcher

	queue   chan domain.InboundMessage
	wg      conc.WaitGroup
	started atomic.Bool

	stopMu sync.Mutex
	stop   context.CancelFunc
}

func NewBot(deps *Dependencies) (*Bot, error) {
	if deps == nil {
		return nil, errors.New("bot dependencies must not be nil")
	}
	if deps.Transport == nil {
		return nil, errors.New("bot transport must not be nil")
	}
	if deps.MessageAdapter == nil {
		return nil, errors.New("bot message adapter must not be nil")
	}
	if deps.Dispatcher == nil {
		return nil, errors.New("bot dispatcher must not be nil")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	queueSize := deps.QueueSize
	if queueSize <= 0 {
		queueSize = constants.DispatchConfig.QueueSize
	}

	return &Bot{
		logger:     logger,
		transport:  deps.Transport,
		adapter:    deps.MessageAdapter,
		dispatcher: deps.Dispatcher,
		queue:      make(chan domain.InboundMessage, queueSize),
	}, nil
}

// Start runs the dispatch worker and blocks on the transport until ctx is
// done or the transport fails.
func (b *Bot) Start(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return errors.New("bot already started")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	b.stopMu.Lock()
	b.stop = cancel
	b.stopMu.Unlock()

	b.wg.Go(func() {
		b.run(workerCtx)
	})

	b.logger.Info("Bot started",
		zap.Int("commands", b.dispatcher.Registry().Len()),
		zap.Strings("modules", b.dispatcher.Modules().Active()),
	)

	if err := b.transport.Start(workerCtx, func(in domain.InboundMessage) {
		b.enqueue(workerCtx, in)
	}); err != nil {
		cancel()
		return fmt.Errorf("transport start failed: %w", err)
	}
	return nil
}

// Shutdown closes the transport and waits for the worker to drain the message
// in flight.
func (b *Bot) Shutdown(ctx context.Context) error {
	closeErr := b.transport.Close()

	b.stopMu.Lock()
	stop := b.stop
	b.stopMu.Unlock()
	if stop != nil {
		stop()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("bot shutdown: %w", ctx.Err())
	}

	if closeErr != nil {
		return fmt.Errorf("transport close failed: %w", closeErr)
	}
	b.logger.Info("Bot stopped")
	return nil
}

func (b *Bot) enqueue(ctx context.Context, in domain.InboundMessage) {
	select {
	case b.queue <- in:
	case <-ctx.Done():
	}
}

func (b *Bot) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-b.queue:
			b.handle(ctx, in)
		}
	}
}

func (b *Bot) handle(ctx context.Context, in domain.InboundMessage) {
	msg, err := b.adapter.ToChatMessage(ctx, &in)
	if err != nil {
		if errors.Is(err, adapter.ErrEmptyMessage) {
			return
		}
		b.logger.Warn("Failed to resolve chat message",
			zap.String("channel", in.Channel),
			zap.String("user", in.Username),
			zap.Error(err),
		)
		return
	}

	b.dispatcher.Trigger(ctx, msg, &channelReply{
		ctx:       ctx,
		transport: b.transport,
		channel:   msg.Channel,
		logger:    b.logger,
	})
}

// channelReply sends handler output back to the channel a message came from.
type channelReply struct {
	ctx       context.Context
	transport Transport
	channel   string
	logger    *zap.Logger
}

func (r *channelReply) SendMessage(text string) {
	ctx, cancel := context.WithTimeout(r.ctx, constants.DispatchConfig.ReplyTimeout)
	defer cancel()

	if err := r.transport.SendMessage(ctx, r.channel, text); err != nil {
		r.logger.Warn("Failed to send reply",
			zap.String("channel", r.channel),
			zap.String("text", util.TruncateString(text, constants.StringLimits.LoggedPayload)),
			zap.Error(err),
		)
	}
}
