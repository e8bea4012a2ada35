package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const OutboxColName = "outbox"

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxDispatched OutboxStatus = "dispatched"
	OutboxDone       OutboxStatus = "done"
	OutboxDead       OutboxStatus = "dead"
)

type OutboxKind string

const (
	OutboxEventSync         OutboxKind = "event.sync"
	OutboxEventCancel       OutboxKind = "event.cancel"
	OutboxEventDelete       OutboxKind = "event.delete"
	OutboxEmailConfirmation OutboxKind = "email.booking_confirmation"
	OutboxEmailCancellation OutboxKind = "email.booking_cancellation"
	OutboxEmailStatusUpdate OutboxKind = "email.booking_status"
)

// OutboxEntry is a secondary effect persisted alongside the primary write.
// A background dispatcher publishes pending entries; the consumer executes
// them idempotently keyed by DedupeKey.
type OutboxEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind          OutboxKind         `bson:"kind" json:"kind"`
	DedupeKey     string             `bson:"dedupe_key" json:"dedupe_key"`
	Payload       map[string]string  `bson:"payload" json:"payload"`
	Status        OutboxStatus       `bson:"status" json:"status"`
	Attempts      int                `bson:"attempts" json:"attempts"`
	MaxAttempts   int                `bson:"max_attempts" json:"max_attempts"`
	NextAttemptAt time.Time          `bson:"next_attempt_at" json:"next_attempt_at"`
	LastError     string             `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
	// ExpiresAt drives the TTL index that prunes finished entries.
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
}

type OutboxRepo interface {
	EnqueueOutbox(ctx context.Context, entry *OutboxEntry) error
	ClaimNextOutbox(ctx context.Context) (*OutboxEntry, error)
	MarkOutboxDone(ctx context.Context, id primitive.ObjectID) error
	MarkOutboxFailed(ctx context.Context, id primitive.ObjectID, attemptErr string) error
	EnsureOutboxIndexes(ctx context.Context) error
}

func (mdb *MongodbRepo) EnsureOutboxIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, DbName, OutboxColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(0).
				SetName("expires_at_ttl"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "next_attempt_at", Value: 1},
			},
			Options: options.Index().SetName("status_next_attempt_idx"),
		},
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "dedupe_key", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("kind_dedupe_unique"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating outbox indexes: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) EnqueueOutbox(ctx context.Context, entry *OutboxEntry) error {
	col, err := mdb.GetCollection(ctx, DbName, OutboxColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	now := time.Now()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	entry.Status = OutboxPending
	if entry.MaxAttempts <= 0 {
		entry.MaxAttempts = 5
	}
	entry.NextAttemptAt = now
	entry.CreatedAt = now
	entry.UpdatedAt = now
	// Finished entries are pruned after 30 days.
	entry.ExpiresAt = now.Add(30 * 24 * time.Hour)

	if _, err := col.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Same effect already queued; the unique index keeps it idempotent.
			return nil
		}
		return fmt.Errorf("failed to enqueue outbox entry: %w", err)
	}
	return nil
}

// ClaimNextOutbox atomically takes the oldest due pending entry so that
// multiple dispatcher instances never publish the same entry twice. Returns
// nil when nothing is due.
func (mdb *MongodbRepo) ClaimNextOutbox(ctx context.Context) (*OutboxEntry, error) {
	col, err := mdb.GetCollection(ctx, DbName, OutboxColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	filter := bson.M{
		"status":          OutboxPending,
		"next_attempt_at": bson.M{"$lte": now},
	}
	update := bson.M{
		"$set": bson.M{"status": OutboxDispatched, "updated_at": now},
		"$inc": bson.M{"attempts": 1},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}}).
		SetReturnDocument(options.After)

	var entry OutboxEntry
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error claiming outbox entry: %v", err)
	}
	return &entry, nil
}

func (mdb *MongodbRepo) MarkOutboxDone(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, OutboxColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": OutboxDone, "updated_at": time.Now()},
	})
	return err
}

// MarkOutboxFailed requeues the entry with exponential backoff, or marks it
// dead once attempts are exhausted.
func (mdb *MongodbRepo) MarkOutboxFailed(ctx context.Context, id primitive.ObjectID, attemptErr string) error {
	col, err := mdb.GetCollection(ctx, DbName, OutboxColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	var entry OutboxEntry
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&entry); err != nil {
		return fmt.Errorf("error loading outbox entry: %v", err)
	}

	now := time.Now()
	set := bson.M{
		"last_error": attemptErr,
		"updated_at": now,
	}
	if entry.Attempts >= entry.MaxAttempts {
		set["status"] = OutboxDead
	} else {
		set["status"] = OutboxPending
		backoff := time.Duration(1<<uint(entry.Attempts)) * time.Second
		if backoff > 5*time.Minute {
			backoff = 5 * time.Minute
		}
		set["next_attempt_at"] = now.Add(backoff)
	}
	_, err = col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}
