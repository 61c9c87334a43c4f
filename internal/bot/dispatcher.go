package bot

import (
	"context"
	"log/slog"
	"sync"
)

// perUserBuffer bounds how many turns can queue behind a slow one for the
// same user before the dispatcher blocks on them.
const perUserBuffer = 16

// Run subscribes to the transport and processes turns until the context is
// canceled. Turns for different users run concurrently; turns for the same
// user run one at a time in delivery order, over a per-user lane goroutine.
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.messenger.Subscribe(ctx)
	if err != nil {
		return err
	}

	lanes := make(map[int64]chan func())
	var wg sync.WaitGroup

	for msg := range updates {
		lane, ok := lanes[msg.UserID]
		if !ok {
			lane = make(chan func(), perUserBuffer)
			lanes[msg.UserID] = lane
			wg.Add(1)
			go func() {
				defer wg.Done()
				for turn := range lane {
					turn()
				}
			}()
		}

		m := msg
		select {
		case lane <- func() { b.HandleMessage(ctx, m) }:
		case <-ctx.Done():
		}
	}

	for _, lane := range lanes {
		close(lane)
	}
	wg.Wait()

	b.logger.InfoContext(ctx, "dispatcher stopped", slog.Int("users", len(lanes)))
	return ctx.Err()
}
