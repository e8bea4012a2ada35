package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/models"
)

// Dispatcher polls the outbox collection for due entries and hands them to
// the broker. A publish failure requeues the entry with backoff, so the
// request path never waits on the broker.
type Dispatcher struct {
	repo      models.OutboxRepo
	publisher *Publisher
	logger    *slog.Logger
	interval  time.Duration
}

func NewDispatcher(repo models.OutboxRepo, publisher *Publisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		interval:  2 * time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		entry, err := d.repo.ClaimNextOutbox(ctx)
		if err != nil {
			d.logger.Error("outbox claim failed", "error", err)
			return
		}
		if entry == nil {
			return
		}

		msg := TaskMessage{
			OutboxID:  entry.ID.Hex(),
			Kind:      string(entry.Kind),
			DedupeKey: entry.DedupeKey,
			Payload:   entry.Payload,
		}
		if err := d.publisher.Publish(ctx, msg); err != nil {
			d.logger.Error("outbox publish failed", "outbox_id", msg.OutboxID, "error", err)
			if markErr := d.repo.MarkOutboxFailed(ctx, entry.ID, err.Error()); markErr != nil {
				d.logger.Error("outbox requeue failed", "outbox_id", msg.OutboxID, "error", markErr)
			}
			return
		}
	}
}
