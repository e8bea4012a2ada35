// Package queue moves persisted outbox entries through the message broker:
// a dispatcher publishes claimed entries, a consumer executes them.
package queue

// TaskMessage is the broker payload for one outbox entry. The consumer
// reloads state from the database by the ids inside Payload, so a redelivered
// message stays idempotent.
type TaskMessage struct {
	OutboxID  string            `json:"outbox_id"`
	Kind      string            `json:"kind"`
	DedupeKey string            `json:"dedupe_key"`
	Payload   map[string]string `json:"payload"`
}

const OutboxQueueName = "wanderbay.outbox"
