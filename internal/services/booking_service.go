package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Flat checkout pricing constants applied to every booking.
const (
	taxRate        = 0.10
	serviceFeeFlat = 25.0
)

type BookingService struct {
	bookings   models.BookingRepo
	hotels     models.HotelRepo
	packages   models.PackageRepo
	properties models.PropertyRepo
	users      models.UserRepo
	coupons    models.CouponRepo
	outbox     models.OutboxRepo
	logger     *slog.Logger
}

func NewBookingService(
	bookings models.BookingRepo,
	hotels models.HotelRepo,
	packages models.PackageRepo,
	properties models.PropertyRepo,
	users models.UserRepo,
	coupons models.CouponRepo,
	outbox models.OutboxRepo,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		bookings:   bookings,
		hotels:     hotels,
		packages:   packages,
		properties: properties,
		users:      users,
		coupons:    coupons,
		outbox:     outbox,
		logger:     logger,
	}
}

// CreateBookingInput is the validated checkout submission.
type CreateBookingInput struct {
	BookingType     models.BookingType `json:"booking_type" validate:"required,oneof=hotel package property"`
	HotelID         string             `json:"hotel_id,omitempty"`
	PackageID       string             `json:"package_id,omitempty"`
	PropertyID      string             `json:"property_id,omitempty"`
	CheckIn         time.Time          `json:"check_in" validate:"required"`
	CheckOut        time.Time          `json:"check_out" validate:"required"`
	Adults          int                `json:"adults" validate:"required,gte=1"`
	Children        int                `json:"children" validate:"gte=0"`
	Infants         int                `json:"infants" validate:"gte=0"`
	Rooms           int                `json:"rooms,omitempty" validate:"gte=0"`
	RoomType        string             `json:"room_type,omitempty"`
	CouponCode      string             `json:"coupon_code,omitempty"`
	SpecialRequests string             `json:"special_requests,omitempty"`
	ContactEmail    string             `json:"contact_email,omitempty" validate:"omitempty,email"`
}

func parseOptionalID(raw string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid id: %s", raw))
	}
	return &id, nil
}

// CreateBooking persists a checkout submission: it verifies the booked
// entity exists, takes rooms out of the hotel pool through the guarded
// decrement, applies an optional coupon, and queues the calendar event and
// confirmation email as outbox tasks so their failure never blocks checkout.
func (bs *BookingService) CreateBooking(ctx context.Context, userID primitive.ObjectID, input CreateBookingInput) (*models.Booking, error) {
	if err := models.Validate.Struct(input); err != nil {
		return nil, apperr.BadRequest("invalid booking data").WithDetails(err.Error())
	}

	hotelID, err := parseOptionalID(input.HotelID)
	if err != nil {
		return nil, err
	}
	packageID, err := parseOptionalID(input.PackageID)
	if err != nil {
		return nil, err
	}
	propertyID, err := parseOptionalID(input.PropertyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &models.Booking{
		BookingType: input.BookingType,
		UserID:      userID,
		HotelID:     hotelID,
		PackageID:   packageID,
		PropertyID:  propertyID,
		CheckIn:     input.CheckIn,
		CheckOut:    input.CheckOut,
		Guests: models.GuestCount{
			Adults:   input.Adults,
			Children: input.Children,
			Infants:  input.Infants,
		},
		Status:          models.BookingPending,
		PaymentStatus:   models.PaymentPending,
		SpecialRequests: input.SpecialRequests,
		ContactEmail:    input.ContactEmail,
		CreatedAt:       now,
		UpdatedAt:       now,
		StatusHistory: []models.StatusChange{{
			Status:    models.BookingPending,
			ChangedAt: now,
			ChangedBy: userID.Hex(),
			Reason:    "booking created",
		}},
	}
	if input.BookingType == models.BookingTypeHotel {
		rooms := input.Rooms
		if rooms == 0 {
			rooms = 1
		}
		booking.RoomDetails = &models.RoomDetails{RoomType: input.RoomType, Rooms: rooms}
	}
	if err := booking.Validate(); err != nil {
		return nil, err
	}
	booking.Normalize()

	basePrice, err := bs.priceBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	discount := 0.0
	var coupon *models.Coupon
	if input.CouponCode != "" {
		coupon, discount, err = bs.applyCoupon(ctx, booking, input.CouponCode, basePrice)
		if err != nil {
			return nil, err
		}
	}

	taxes := (basePrice - discount) * taxRate
	booking.Pricing = models.BookingPricing{
		BasePrice:  basePrice,
		Discount:   discount,
		Taxes:      taxes,
		ServiceFee: serviceFeeFlat,
		TotalPrice: basePrice - discount + taxes + serviceFeeFlat,
	}
	booking.Normalize()

	roomsTaken := false
	if booking.BookingType == models.BookingTypeHotel {
		if err := bs.hotels.DecrementRooms(ctx, *booking.HotelID, booking.RoomDetails.Rooms); err != nil {
			return nil, err
		}
		roomsTaken = true
	}

	created, err := bs.bookings.CreateBooking(ctx, booking)
	if err != nil {
		if roomsTaken {
			if restoreErr := bs.hotels.RestoreRooms(ctx, *booking.HotelID, booking.RoomDetails.Rooms); restoreErr != nil {
				bs.logger.Error("room restore after failed insert errored", "hotel_id", booking.HotelID.Hex(), "error", restoreErr)
			}
		}
		return nil, err
	}

	if coupon != nil {
		if _, err := bs.coupons.RedeemCoupon(ctx, coupon.ID, userID, discount); err != nil {
			// The booking stands; the discount was validated moments ago, so
			// a redemption miss here is only logged.
			bs.logger.Error("coupon redemption failed after booking", "coupon", coupon.Code, "booking", created.Reference, "error", err)
		}
	}

	if err := bs.users.AppendUserBooking(ctx, userID, created.ID); err != nil {
		bs.logger.Error("append booking to user history failed", "user_id", userID.Hex(), "error", err)
	}
	if booking.BookingType == models.BookingTypePackage {
		if err := bs.packages.IncrementPackageBookings(ctx, *booking.PackageID); err != nil {
			bs.logger.Error("package booking counter failed", "package_id", booking.PackageID.Hex(), "error", err)
		}
	}

	bs.enqueue(ctx, models.OutboxEventSync, created.ID, "event-sync:"+created.ID.Hex())
	bs.enqueue(ctx, models.OutboxEmailConfirmation, created.ID, "email-confirm:"+created.ID.Hex())

	return created, nil
}

// priceBooking derives the base price from the booked entity, returning 404
// when the reference does not resolve.
func (bs *BookingService) priceBooking(ctx context.Context, booking *models.Booking) (float64, error) {
	switch booking.BookingType {
	case models.BookingTypeHotel:
		hotel, err := bs.hotels.GetHotelByID(ctx, *booking.HotelID)
		if err != nil {
			return 0, err
		}
		if hotel == nil {
			return 0, apperr.NotFound("hotel not found")
		}
		if !hotel.HasRoomsAvailable(booking.RoomDetails.Rooms) {
			return 0, apperr.BadRequest("not enough rooms available")
		}
		return hotel.PricePerNight * float64(booking.Duration) * float64(booking.RoomDetails.Rooms), nil

	case models.BookingTypePackage:
		pkg, err := bs.packages.GetPackageByID(ctx, *booking.PackageID)
		if err != nil {
			return 0, err
		}
		if pkg == nil {
			return 0, apperr.NotFound("package not found")
		}
		return pkg.Price, nil

	case models.BookingTypeProperty:
		property, err := bs.properties.GetPropertyByID(ctx, *booking.PropertyID)
		if err != nil {
			return 0, err
		}
		if property == nil {
			return 0, apperr.NotFound("property not found")
		}
		return property.PricePerNight * float64(booking.Duration), nil
	}
	return 0, apperr.BadRequest("unsupported booking type")
}

func (bs *BookingService) applyCoupon(ctx context.Context, booking *models.Booking, code string, orderAmount float64) (*models.Coupon, float64, error) {
	if booking.BookingType != models.BookingTypePackage {
		return nil, 0, apperr.BadRequest("coupons only apply to package bookings")
	}
	coupon, err := bs.coupons.GetCouponByCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	if coupon == nil {
		return nil, 0, apperr.NotFound("coupon not found")
	}
	user, err := bs.users.GetUserByID(ctx, booking.UserID)
	if err != nil {
		return nil, 0, err
	}
	if user == nil {
		return nil, 0, apperr.NotFound("user not found")
	}

	validation := coupon.ValidateForOrder(*booking.PackageID, user.OrderStats(), orderAmount, time.Now())
	if !validation.IsValid {
		return nil, 0, apperr.BadRequest("coupon is not valid for this order").WithDetails(fmt.Sprintf("%v", validation.Errors))
	}
	return coupon, validation.DiscountAmount, nil
}

func (bs *BookingService) enqueue(ctx context.Context, kind models.OutboxKind, bookingID primitive.ObjectID, dedupeKey string) {
	entry := &models.OutboxEntry{
		Kind:      kind,
		DedupeKey: dedupeKey,
		Payload:   map[string]string{"booking_id": bookingID.Hex()},
	}
	if err := bs.outbox.EnqueueOutbox(ctx, entry); err != nil {
		bs.logger.Error("outbox enqueue failed", "kind", kind, "booking_id", bookingID.Hex(), "error", err)
	}
}

func (bs *BookingService) GetBooking(ctx context.Context, id primitive.ObjectID, actorID primitive.ObjectID, isAdmin bool) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}
	if booking.UserID != actorID && !isAdmin {
		return nil, apperr.Forbidden("you can only view your own bookings")
	}
	return booking, nil
}

func (bs *BookingService) ListBookings(ctx context.Context, filter models.BookingFilter, opts models.ListOptions) ([]*models.Booking, int64, error) {
	if opts.Limit <= 0 {
		return nil, 0, apperr.BadRequest("invalid limit")
	}
	return bs.bookings.ListBookings(ctx, filter, opts)
}

// ConfirmBooking moves a pending booking to confirmed; admin only.
func (bs *BookingService) ConfirmBooking(ctx context.Context, id primitive.ObjectID, actor string) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}
	if err := booking.ApplyConfirmation(actor, time.Now()); err != nil {
		return nil, err
	}
	if err := bs.bookings.ReplaceBooking(ctx, booking); err != nil {
		return nil, err
	}
	bs.enqueue(ctx, models.OutboxEmailStatusUpdate, booking.ID, "email-status:"+booking.ID.Hex()+":confirmed")
	return booking, nil
}

// CancelBooking cancels on behalf of the owner or an admin, computes the
// refund tier, restores the hotel room pool, and cascades to the calendar
// event through the outbox.
func (bs *BookingService) CancelBooking(ctx context.Context, id primitive.ObjectID, actorID primitive.ObjectID, isAdmin bool, reason string) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}
	if booking.UserID != actorID && !isAdmin {
		return nil, apperr.Forbidden("you can only cancel your own bookings")
	}

	if err := booking.ApplyCancellation(actorID.Hex(), reason, time.Now()); err != nil {
		return nil, err
	}
	if err := bs.bookings.ReplaceBooking(ctx, booking); err != nil {
		return nil, err
	}

	if booking.BookingType == models.BookingTypeHotel && booking.RoomDetails != nil {
		if err := bs.hotels.RestoreRooms(ctx, *booking.HotelID, booking.RoomDetails.Rooms); err != nil {
			bs.logger.Error("room restore on cancellation failed", "hotel_id", booking.HotelID.Hex(), "booking", booking.Reference, "error", err)
		}
	}

	bs.enqueue(ctx, models.OutboxEventCancel, booking.ID, "event-cancel:"+booking.ID.Hex())
	bs.enqueue(ctx, models.OutboxEmailCancellation, booking.ID, "email-cancel:"+booking.ID.Hex())

	return booking, nil
}

// UpdateBookingStatus is the admin transition entry point; it goes through
// the same transition table as every other mutation.
func (bs *BookingService) UpdateBookingStatus(ctx context.Context, id primitive.ObjectID, status models.BookingStatus, actor, reason string) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}
	if err := booking.Transition(status, actor, reason, time.Now()); err != nil {
		return nil, err
	}
	if err := bs.bookings.ReplaceBooking(ctx, booking); err != nil {
		return nil, err
	}
	if status == models.BookingCancelled {
		bs.enqueue(ctx, models.OutboxEventCancel, booking.ID, "event-cancel:"+booking.ID.Hex())
	}
	bs.enqueue(ctx, models.OutboxEmailStatusUpdate, booking.ID, "email-status:"+booking.ID.Hex()+":"+string(status))
	return booking, nil
}

func (bs *BookingService) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, paidAmount float64, status models.PaymentStatus) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}
	if err := booking.ApplyPayment(paidAmount, status, time.Now()); err != nil {
		return nil, err
	}
	if err := bs.bookings.ReplaceBooking(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// DeleteBooking hard-deletes a booking (admin only) and cascades to any
// linked calendar event.
func (bs *BookingService) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return apperr.NotFound("booking not found")
	}
	if err := bs.bookings.DeleteBooking(ctx, id); err != nil {
		return err
	}
	bs.enqueue(ctx, models.OutboxEventDelete, id, "event-delete:"+id.Hex())
	return nil
}
