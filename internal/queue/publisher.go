package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher owns a channel on the shared broker connection and publishes
// task messages to the durable outbox queue.
type Publisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	p := &Publisher{conn: conn}
	if err := p.ensureChannel(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureChannel() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(OutboxQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("queue declare: %w", err)
	}
	p.ch = ch
	return nil
}

func (p *Publisher) Publish(ctx context.Context, msg TaskMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, "", OutboxQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish task: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
