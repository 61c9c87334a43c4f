package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultHeartbeatInterval is how often the typing indicator is
	// refreshed while an operation runs.
	DefaultHeartbeatInterval = 5 * time.Second

	// DefaultHeartbeatLifetime is the hard cap after which the periodic
	// emission stops even if the wrapped operation has not completed.
	DefaultHeartbeatLifetime = 5 * time.Minute

	// placeholderText is the "working" message shown for the duration.
	placeholderText = "\U0001F4AC"
)

// HeartbeatFactory creates heartbeats for chats. The orchestrator acquires
// one around every operation that may take seconds to minutes.
type HeartbeatFactory interface {
	// Start posts the placeholder message and begins periodic typing
	// emission for the chat.
	Start(ctx context.Context, chatID int64) (*Heartbeat, error)
}

// Heartbeat is a scoped typing-indicator resource. Stop is safe to call
// multiple times and from deferred paths; the ticker, the lifetime cap and
// the placeholder deletion are all released exactly once.
type Heartbeat struct {
	messenger     Messenger
	logger        *slog.Logger
	chatID        int64
	placeholderID int64
	cancel        context.CancelFunc
	done          chan struct{}
	stopOnce      sync.Once
}

// heartbeatFactory implements HeartbeatFactory.
type heartbeatFactory struct {
	messenger Messenger
	logger    *slog.Logger
	interval  time.Duration
	lifetime  time.Duration
}

// HeartbeatOption is a functional option for configuring the factory.
type HeartbeatOption func(*heartbeatFactory)

// NewHeartbeatFactory creates a heartbeat factory over the messenger.
func NewHeartbeatFactory(messenger Messenger, opts ...HeartbeatOption) HeartbeatFactory {
	f := &heartbeatFactory{
		messenger: messenger,
		logger:    slog.Default(),
		interval:  DefaultHeartbeatInterval,
		lifetime:  DefaultHeartbeatLifetime,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithHeartbeatInterval overrides the typing refresh period.
func WithHeartbeatInterval(interval time.Duration) HeartbeatOption {
	return func(f *heartbeatFactory) {
		f.interval = interval
	}
}

// WithHeartbeatLifetime overrides the hard lifetime cap.
func WithHeartbeatLifetime(lifetime time.Duration) HeartbeatOption {
	return func(f *heartbeatFactory) {
		f.lifetime = lifetime
	}
}

// WithHeartbeatLogger sets the logger.
func WithHeartbeatLogger(logger *slog.Logger) HeartbeatOption {
	return func(f *heartbeatFactory) {
		f.logger = logger
	}
}

// Start implements HeartbeatFactory.
func (f *heartbeatFactory) Start(ctx context.Context, chatID int64) (*Heartbeat, error) {
	placeholderID, err := f.messenger.SendMessage(ctx, chatID, placeholderText, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send heartbeat placeholder: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	hb := &Heartbeat{
		messenger:     f.messenger,
		logger:        f.logger,
		chatID:        chatID,
		placeholderID: placeholderID,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	go hb.run(runCtx, f.interval, f.lifetime)

	return hb, nil
}

// run emits typing indicators until canceled or until the lifetime cap.
func (hb *Heartbeat) run(ctx context.Context, interval, lifetime time.Duration) {
	defer close(hb.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	capTimer := time.NewTimer(lifetime)
	defer capTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-capTimer.C:
			// Hard cap reached; the wrapped operation may still be
			// running, but nothing is emitted past this point.
			hb.logger.WarnContext(ctx, "Heartbeat hit lifetime cap",
				slog.Int64("chat_id", hb.chatID))
			return

		case <-ticker.C:
			if err := hb.messenger.SendTyping(ctx, hb.chatID); err != nil {
				hb.logger.ErrorContext(ctx, "Failed to send typing indicator",
					slog.Int64("chat_id", hb.chatID),
					slog.Any("error", err))
				// Keep going; the transport might recover.
			}
		}
	}
}

// Stop cancels the periodic emission and deletes the placeholder message.
// It must run on every exit path of the wrapped operation; defer it right
// after Start.
func (hb *Heartbeat) Stop(ctx context.Context) {
	hb.stopOnce.Do(func() {
		hb.cancel()
		<-hb.done

		if err := hb.messenger.DeleteMessage(ctx, hb.chatID, hb.placeholderID); err != nil {
			hb.logger.ErrorContext(ctx, "Failed to delete heartbeat placeholder",
				slog.Int64("chat_id", hb.chatID),
				slog.Int64("message_id", hb.placeholderID),
				slog.Any("error", err))
		}
	})
}
