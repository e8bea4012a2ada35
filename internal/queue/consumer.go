package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StartOutboxConsumer consumes the durable outbox queue and executes each
// task. It runs a reconnect loop with backoff and only returns when the
// context is cancelled. A task failure is nacked without requeue; retry is
// driven by the outbox collection, not broker redelivery, so backoff and the
// attempt cap stay in one place.
func StartOutboxConsumer(ctx context.Context, url string, outbox models.OutboxRepo, executor *Executor, logger *slog.Logger) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Error("outbox consumer dial failed", "error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(ctx, conn, outbox, executor, logger); err != nil {
			logger.Error("outbox consume loop ended", "error", err)
		}
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, outbox models.OutboxRepo, executor *Executor, logger *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		logger.Error("outbox consumer set QoS failed", "error", err)
	}

	if _, err := ch.QueueDeclare(OutboxQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(OutboxQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			handleDelivery(ctx, d, outbox, executor, logger)
		}
	}
}

func handleDelivery(ctx context.Context, d amqp.Delivery, outbox models.OutboxRepo, executor *Executor, logger *slog.Logger) {
	var msg TaskMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		logger.Error("outbox task unmarshal failed", "error", err)
		_ = d.Nack(false, false)
		return
	}

	outboxID, err := primitive.ObjectIDFromHex(msg.OutboxID)
	if err != nil {
		logger.Error("outbox task has invalid id", "outbox_id", msg.OutboxID)
		_ = d.Nack(false, false)
		return
	}

	taskCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := executor.Execute(taskCtx, msg); err != nil {
		logger.Error("outbox task failed", "kind", msg.Kind, "dedupe_key", msg.DedupeKey, "error", err)
		if markErr := outbox.MarkOutboxFailed(taskCtx, outboxID, err.Error()); markErr != nil {
			logger.Error("outbox mark failed errored", "outbox_id", msg.OutboxID, "error", markErr)
		}
		_ = d.Nack(false, false)
		return
	}

	if err := outbox.MarkOutboxDone(taskCtx, outboxID); err != nil {
		logger.Error("outbox mark done errored", "outbox_id", msg.OutboxID, "error", err)
	}
	_ = d.Ack(false)
}
