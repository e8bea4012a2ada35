package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeEventRepo struct {
	models.EventRepo
	event   *models.Event
	deleted bool
}

func (f *fakeEventRepo) CreateEvent(_ context.Context, event *models.Event) (*models.Event, error) {
	f.event = event
	return event, nil
}

func (f *fakeEventRepo) GetEventByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	if f.event != nil && f.event.ID == id {
		return f.event, nil
	}
	return nil, nil
}

func (f *fakeEventRepo) ReplaceEvent(_ context.Context, event *models.Event) error {
	f.event = event
	return nil
}

func (f *fakeEventRepo) DeleteEvent(_ context.Context, id primitive.ObjectID) error {
	f.deleted = true
	return nil
}

type fakeBookingRepo struct {
	models.BookingRepo
	booking *models.Booking
}

func (f *fakeBookingRepo) GetBookingByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	if f.booking != nil && f.booking.ID == id {
		return f.booking, nil
	}
	return nil, nil
}

func (f *fakeBookingRepo) ReplaceBooking(_ context.Context, booking *models.Booking) error {
	f.booking = booking
	return nil
}

type fakeHotelRepo struct {
	models.HotelRepo
	restored int
}

func (f *fakeHotelRepo) RestoreRooms(_ context.Context, _ primitive.ObjectID, n int) error {
	f.restored += n
	return nil
}

type fakeOutboxRepo struct {
	models.OutboxRepo
	kinds []models.OutboxKind
}

func (f *fakeOutboxRepo) EnqueueOutbox(_ context.Context, entry *models.OutboxEntry) error {
	f.kinds = append(f.kinds, entry.Kind)
	return nil
}

func attachedEventFixture() (*models.Event, *models.Booking, primitive.ObjectID) {
	owner := primitive.NewObjectID()
	hotelID := primitive.NewObjectID()
	checkIn := time.Now().Add(96 * time.Hour)

	booking := &models.Booking{
		ID:          primitive.NewObjectID(),
		Reference:   "HTL-1-TEST",
		BookingType: models.BookingTypeHotel,
		UserID:      owner,
		HotelID:     &hotelID,
		CheckIn:     checkIn,
		CheckOut:    checkIn.Add(48 * time.Hour),
		RoomDetails: &models.RoomDetails{RoomType: "deluxe", Rooms: 2},
		Status:      models.BookingConfirmed,
	}
	booking.Pricing.TotalPrice = 1000

	event := &models.Event{
		ID:        primitive.NewObjectID(),
		Title:     "Anniversary trip",
		BookingID: &booking.ID,
		UserID:    owner,
		StartsAt:  checkIn,
		EndsAt:    checkIn.Add(48 * time.Hour),
		Source:    models.EventSourceManual,
		Status:    models.EventScheduled,
	}
	return event, booking, owner
}

func newEventServiceFixture(event *models.Event, booking *models.Booking) (*EventService, *fakeEventRepo, *fakeBookingRepo, *fakeHotelRepo, *fakeOutboxRepo) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	events := &fakeEventRepo{event: event}
	bookings := &fakeBookingRepo{booking: booking}
	hotels := &fakeHotelRepo{}
	outbox := &fakeOutboxRepo{}
	bookingService := NewBookingService(bookings, hotels, nil, nil, nil, nil, outbox, logger)
	return NewEventService(events, bookingService, logger), events, bookings, hotels, outbox
}

func TestCancelEventCascadesToAttachedBooking(t *testing.T) {
	event, booking, owner := attachedEventFixture()
	svc, events, bookings, hotels, _ := newEventServiceFixture(event, booking)

	updated, err := svc.UpdateEvent(context.Background(), event.ID, owner, false, &models.Event{Status: models.EventCancelled})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != models.EventCancelled {
		t.Errorf("expected event cancelled, got %s", updated.Status)
	}
	if bookings.booking.Status != models.BookingCancelled {
		t.Errorf("expected attached booking cancelled, got %s", bookings.booking.Status)
	}
	if hotels.restored != 2 {
		t.Errorf("expected 2 rooms restored, got %d", hotels.restored)
	}
	if events.event.Status != models.EventCancelled {
		t.Errorf("expected stored event cancelled, got %s", events.event.Status)
	}
}

func TestDeleteEventCascadesToAttachedBooking(t *testing.T) {
	event, booking, owner := attachedEventFixture()
	svc, events, bookings, _, _ := newEventServiceFixture(event, booking)

	if err := svc.DeleteEvent(context.Background(), event.ID, owner, false); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !events.deleted {
		t.Error("expected event to be deleted")
	}
	if bookings.booking.Status != models.BookingCancelled {
		t.Errorf("expected attached booking cancelled, got %s", bookings.booking.Status)
	}
}

func TestCancelEventLeavesTerminalBookingAlone(t *testing.T) {
	event, booking, owner := attachedEventFixture()
	booking.Status = models.BookingCompleted
	svc, _, bookings, hotels, _ := newEventServiceFixture(event, booking)

	if _, err := svc.UpdateEvent(context.Background(), event.ID, owner, false, &models.Event{Status: models.EventCancelled}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if bookings.booking.Status != models.BookingCompleted {
		t.Errorf("expected booking left completed, got %s", bookings.booking.Status)
	}
	if hotels.restored != 0 {
		t.Errorf("expected no rooms restored, got %d", hotels.restored)
	}
}

func TestCreateEventRejectsForeignBooking(t *testing.T) {
	event, booking, _ := attachedEventFixture()
	svc, _, _, _, _ := newEventServiceFixture(nil, booking)

	stranger := primitive.NewObjectID()
	input := &models.Event{
		Title:     event.Title,
		BookingID: &booking.ID,
		StartsAt:  event.StartsAt,
		EndsAt:    event.EndsAt,
	}
	_, err := svc.CreateEvent(context.Background(), input, stranger, false)
	if err == nil {
		t.Fatal("expected create to fail for a booking the actor does not own")
	}
	if !apperr.Is(err, "FORBIDDEN") {
		t.Errorf("expected forbidden error, got %v", err)
	}
}

func TestCreateEventKeepsAttachedBooking(t *testing.T) {
	event, booking, owner := attachedEventFixture()
	svc, events, _, _, _ := newEventServiceFixture(nil, booking)

	input := &models.Event{
		Title:     event.Title,
		BookingID: &booking.ID,
		StartsAt:  event.StartsAt,
		EndsAt:    event.EndsAt,
	}
	created, err := svc.CreateEvent(context.Background(), input, owner, false)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.BookingID == nil || *created.BookingID != booking.ID {
		t.Error("expected created event to keep its attached booking")
	}
	if created.Source != models.EventSourceManual {
		t.Errorf("expected manual source, got %s", created.Source)
	}
	if events.event == nil {
		t.Error("expected event to be stored")
	}
}
