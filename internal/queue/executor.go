package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wanderbay/wanderbay-api/internal/mailer"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Executor runs one outbox task. Every handler reloads state by id and
// tolerates missing documents, so redeliveries and double-dispatch are safe.
type Executor struct {
	Bookings models.BookingRepo
	Events   models.EventRepo
	Users    models.UserRepo
	Mailer   mailer.Mailer
	Logger   *slog.Logger
}

func (ex *Executor) Execute(ctx context.Context, msg TaskMessage) error {
	switch models.OutboxKind(msg.Kind) {
	case models.OutboxEventSync:
		return ex.syncBookingEvent(ctx, msg)
	case models.OutboxEventCancel:
		return ex.cancelBookingEvent(ctx, msg)
	case models.OutboxEventDelete:
		return ex.deleteBookingEvent(ctx, msg)
	case models.OutboxEmailConfirmation, models.OutboxEmailCancellation, models.OutboxEmailStatusUpdate:
		return ex.sendBookingEmail(ctx, msg)
	default:
		return fmt.Errorf("unknown outbox kind: %s", msg.Kind)
	}
}

func (ex *Executor) loadBooking(ctx context.Context, msg TaskMessage) (*models.Booking, error) {
	raw, ok := msg.Payload["booking_id"]
	if !ok {
		return nil, fmt.Errorf("task %s missing booking_id", msg.Kind)
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid booking_id %q: %v", raw, err)
	}
	return ex.Bookings.GetBookingByID(ctx, id)
}

func (ex *Executor) syncBookingEvent(ctx context.Context, msg TaskMessage) error {
	booking, err := ex.loadBooking(ctx, msg)
	if err != nil {
		return err
	}
	if booking == nil {
		// Booking deleted before the task ran; nothing to shadow.
		return nil
	}
	event := &models.Event{
		Title:     fmt.Sprintf("Booking %s", booking.Reference),
		BookingID: &booking.ID,
		UserID:    booking.UserID,
		StartsAt:  booking.CheckIn,
		EndsAt:    booking.CheckOut,
	}
	_, err = ex.Events.UpsertBookingEvent(ctx, event)
	return err
}

func (ex *Executor) cancelBookingEvent(ctx context.Context, msg TaskMessage) error {
	raw, ok := msg.Payload["booking_id"]
	if !ok {
		return fmt.Errorf("task %s missing booking_id", msg.Kind)
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return fmt.Errorf("invalid booking_id %q: %v", raw, err)
	}
	return ex.Events.SetEventStatusByBooking(ctx, id, models.EventCancelled)
}

func (ex *Executor) deleteBookingEvent(ctx context.Context, msg TaskMessage) error {
	raw, ok := msg.Payload["booking_id"]
	if !ok {
		return fmt.Errorf("task %s missing booking_id", msg.Kind)
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return fmt.Errorf("invalid booking_id %q: %v", raw, err)
	}
	return ex.Events.DeleteEventByBooking(ctx, id)
}

func (ex *Executor) sendBookingEmail(ctx context.Context, msg TaskMessage) error {
	booking, err := ex.loadBooking(ctx, msg)
	if err != nil {
		return err
	}
	if booking == nil {
		return nil
	}

	to := booking.ContactEmail
	if to == "" {
		user, err := ex.Users.GetUserByID(ctx, booking.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			ex.Logger.Info("email skipped, user gone", "booking", booking.Reference)
			return nil
		}
		to = user.Email
	}

	var subject, body string
	switch models.OutboxKind(msg.Kind) {
	case models.OutboxEmailConfirmation:
		subject = fmt.Sprintf("Booking %s received", booking.Reference)
		body = fmt.Sprintf("<p>Your booking <strong>%s</strong> was received and is %s.</p>", booking.Reference, booking.Status)
	case models.OutboxEmailCancellation:
		subject = fmt.Sprintf("Booking %s cancelled", booking.Reference)
		body = fmt.Sprintf("<p>Your booking <strong>%s</strong> was cancelled. Refund amount: %.2f.</p>", booking.Reference, booking.Cancellation.RefundAmount)
	default:
		subject = fmt.Sprintf("Booking %s updated", booking.Reference)
		body = fmt.Sprintf("<p>Your booking <strong>%s</strong> is now %s.</p>", booking.Reference, booking.Status)
	}

	return ex.Mailer.Send(mailer.Message{To: to, Subject: subject, HTML: body})
}
