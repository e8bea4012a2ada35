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

const EventColName = "events"

type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

type EventSource string

const (
	// EventSourceBooking marks events auto-created as the calendar shadow of
	// a booking.
	EventSourceBooking EventSource = "booking"
	EventSourceManual  EventSource = "manual"
)

type Event struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title" validate:"required"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	BookingID   *primitive.ObjectID `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	StartsAt    time.Time           `bson:"starts_at" json:"starts_at"`
	EndsAt      time.Time           `bson:"ends_at" json:"ends_at"`
	Source      EventSource         `bson:"source" json:"source"`
	Status      EventStatus         `bson:"status" json:"status"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

func (e *Event) BeforeCreate() error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Status == "" {
		e.Status = EventScheduled
	}
	if e.Source == "" {
		e.Source = EventSourceManual
	}
	return nil
}

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	UpsertBookingEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	GetEventByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*Event, error)
	ListEvents(ctx context.Context, userID *primitive.ObjectID, opts ListOptions) ([]*Event, int64, error)
	ReplaceEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error
	SetEventStatusByBooking(ctx context.Context, bookingID primitive.ObjectID, status EventStatus) error
	DeleteEventByBooking(ctx context.Context, bookingID primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	if err := event.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare event for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, DbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return event, nil
}

// UpsertBookingEvent creates or refreshes the calendar shadow of a booking,
// keyed by booking id so a retried outbox task stays idempotent.
func (mdb *MongodbRepo) UpsertBookingEvent(ctx context.Context, event *Event) (*Event, error) {
	if event.BookingID == nil || event.BookingID.IsZero() {
		return nil, fmt.Errorf("booking event requires a booking id")
	}
	col, err := mdb.GetCollection(ctx, DbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	filter := bson.M{"booking_id": *event.BookingID}
	update := bson.M{
		"$set": bson.M{
			"title":       event.Title,
			"description": event.Description,
			"user_id":     event.UserID,
			"starts_at":   event.StartsAt,
			"ends_at":     event.EndsAt,
			"source":      EventSourceBooking,
			"status":      EventScheduled,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{
			"booking_id": *event.BookingID,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var result Event
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("error upserting booking event: %v", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var event Event
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding event: %v", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) GetEventByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var event Event
	err = col.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding event: %v", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context, userID *primitive.ObjectID, opts ListOptions) ([]*Event, int64, error) {
	col, err := mdb.GetCollection(ctx, DbName, EventColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	query := bson.M{}
	if userID != nil {
		query["user_id"] = *userID
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting events: %v", err)
	}

	cursor, err := col.Find(ctx, query, opts.mongoFindOptions("starts_at"))
	if err != nil {
		return nil, 0, fmt.Errorf("error finding events: %v", err)
	}
	defer cursor.Close(ctx)

	var events []*Event
	for cursor.Next(ctx) {
		var e Event
		if err := cursor.Decode(&e); err != nil {
			return nil, 0, fmt.Errorf("error decoding event: %v", err)
		}
		events = append(events, &e)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}
	return events, total, nil
}

func (mdb *MongodbRepo) ReplaceEvent(ctx context.Context, event *Event) error {
	col, err := mdb.GetCollection(ctx, DbName, EventColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	event.UpdatedAt = time.Now()
	res, err := col.ReplaceOne(ctx, bson.M{"_id": event.ID}, event)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("event %s not found", event.ID.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, EventColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("event %s not found", id.Hex())
	}
	return nil
}

// SetEventStatusByBooking cascades a booking status change to its linked
// calendar event, if one exists.
func (mdb *MongodbRepo) SetEventStatusByBooking(ctx context.Context, bookingID primitive.ObjectID, status EventStatus) error {
	col, err := mdb.GetCollection(ctx, DbName, EventColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = col.UpdateOne(ctx, bson.M{"booking_id": bookingID}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	return err
}

func (mdb *MongodbRepo) DeleteEventByBooking(ctx context.Context, bookingID primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, EventColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = col.DeleteMany(ctx, bson.M{"booking_id": bookingID})
	return err
}
