package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventService struct {
	events   models.EventRepo
	bookings *BookingService
	logger   *slog.Logger
}

func NewEventService(events models.EventRepo, bookings *BookingService, logger *slog.Logger) *EventService {
	return &EventService{events: events, bookings: bookings, logger: logger}
}

// CreateEvent inserts a manual calendar event. Booking-sourced events are
// created by the outbox worker, never through this path, but a manual event
// may attach an existing booking the actor owns; cancelling or deleting the
// event then cancels the booking too.
func (es *EventService) CreateEvent(ctx context.Context, event *models.Event, userID primitive.ObjectID, isAdmin bool) (*models.Event, error) {
	event.UserID = userID
	event.Source = models.EventSourceManual
	if event.BookingID != nil {
		if _, err := es.bookings.GetBooking(ctx, *event.BookingID, userID, isAdmin); err != nil {
			return nil, err
		}
	}
	if err := models.Validate.Struct(event); err != nil {
		return nil, apperr.BadRequest("invalid event data").WithDetails(err.Error())
	}
	if !event.EndsAt.After(event.StartsAt) {
		return nil, apperr.BadRequest("ends_at must be after starts_at")
	}
	if err := event.BeforeCreate(); err != nil {
		return nil, err
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	return es.events.CreateEvent(ctx, event)
}

func (es *EventService) GetEvent(ctx context.Context, id primitive.ObjectID, actorID primitive.ObjectID, isAdmin bool) (*models.Event, error) {
	event, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperr.NotFound("event not found")
	}
	if event.UserID != actorID && !isAdmin {
		return nil, apperr.Forbidden("you can only view your own events")
	}
	return event, nil
}

func (es *EventService) ListEvents(ctx context.Context, actorID primitive.ObjectID, isAdmin bool, opts models.ListOptions) ([]*models.Event, int64, error) {
	if opts.Limit <= 0 {
		return nil, 0, apperr.BadRequest("invalid limit")
	}
	if isAdmin {
		return es.events.ListEvents(ctx, nil, opts)
	}
	return es.events.ListEvents(ctx, &actorID, opts)
}

// UpdateEvent edits title, description, schedule, or status. Booking-sourced
// events only accept a status edit; their schedule follows the booking.
// Cancelling a manual event with an attached booking cancels that booking,
// mirroring the booking→event cascade run by the outbox worker.
func (es *EventService) UpdateEvent(ctx context.Context, id primitive.ObjectID, actorID primitive.ObjectID, isAdmin bool, update *models.Event) (*models.Event, error) {
	event, err := es.GetEvent(ctx, id, actorID, isAdmin)
	if err != nil {
		return nil, err
	}

	if event.Source == models.EventSourceBooking {
		if update.Title != "" || !update.StartsAt.IsZero() || !update.EndsAt.IsZero() {
			return nil, apperr.BadRequest("booking events follow their booking; only status can be edited")
		}
	} else {
		if update.Title != "" {
			event.Title = update.Title
		}
		if update.Description != "" {
			event.Description = update.Description
		}
		if !update.StartsAt.IsZero() {
			event.StartsAt = update.StartsAt
		}
		if !update.EndsAt.IsZero() {
			event.EndsAt = update.EndsAt
		}
		if !event.EndsAt.After(event.StartsAt) {
			return nil, apperr.BadRequest("ends_at must be after starts_at")
		}
	}
	prevStatus := event.Status
	if update.Status != "" {
		event.Status = update.Status
	}
	event.UpdatedAt = time.Now()

	if err := es.events.ReplaceEvent(ctx, event); err != nil {
		return nil, err
	}

	if event.Source == models.EventSourceManual &&
		event.Status == models.EventCancelled && prevStatus != models.EventCancelled {
		es.cascadeBookingCancel(ctx, event, actorID, isAdmin, "linked calendar event cancelled")
	}
	return event, nil
}

// DeleteEvent removes a manual event. Booking events are deleted through
// their booking. An attached booking is cancelled on the way out.
func (es *EventService) DeleteEvent(ctx context.Context, id primitive.ObjectID, actorID primitive.ObjectID, isAdmin bool) error {
	event, err := es.GetEvent(ctx, id, actorID, isAdmin)
	if err != nil {
		return err
	}
	if event.Source == models.EventSourceBooking {
		return apperr.BadRequest("booking events are removed by deleting the booking")
	}
	if err := es.events.DeleteEvent(ctx, id); err != nil {
		return err
	}
	es.cascadeBookingCancel(ctx, event, actorID, isAdmin, "linked calendar event deleted")
	return nil
}

// cascadeBookingCancel pushes an event cancellation down to the attached
// booking. A booking already in a state that cannot be cancelled is left
// alone; the event side of the cascade has already happened.
func (es *EventService) cascadeBookingCancel(ctx context.Context, event *models.Event, actorID primitive.ObjectID, isAdmin bool, reason string) {
	if event.BookingID == nil {
		return
	}
	if _, err := es.bookings.CancelBooking(ctx, *event.BookingID, actorID, isAdmin, reason); err != nil {
		es.logger.Warn("booking cancellation cascade from event skipped",
			"event_id", event.ID.Hex(), "booking_id", event.BookingID.Hex(), "error", err)
	}
}
