package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
	BookingCompleted  BookingStatus = "completed"
	BookingNoShow     BookingStatus = "no_show"
)

type BookingType string

const (
	BookingTypeHotel    BookingType = "hotel"
	BookingTypePackage  BookingType = "package"
	BookingTypeProperty BookingType = "property"
)

// bookingTransitions is the single source of truth for legal status moves.
// Every status-mutating entry point goes through Transition; there is no
// direct status assignment elsewhere.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled, BookingNoShow},
	BookingConfirmed:  {BookingCheckedIn, BookingCancelled, BookingCompleted, BookingNoShow},
	BookingCheckedIn:  {BookingCheckedOut, BookingCancelled, BookingCompleted},
	BookingCheckedOut: {BookingCompleted},
	BookingCancelled:  {},
	BookingCompleted:  {},
	BookingNoShow:     {BookingCancelled},
}

func IsBookingStatus(s string) bool {
	_, ok := bookingTransitions[BookingStatus(s)]
	return ok
}

func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type StatusChange struct {
	Status    BookingStatus `bson:"status" json:"status"`
	ChangedAt time.Time     `bson:"changed_at" json:"changed_at"`
	ChangedBy string        `bson:"changed_by,omitempty" json:"changed_by,omitempty"`
	Reason    string        `bson:"reason,omitempty" json:"reason,omitempty"`
}

type GuestCount struct {
	Adults   int `bson:"adults" json:"adults"`
	Children int `bson:"children" json:"children"`
	Infants  int `bson:"infants" json:"infants"`
	Total    int `bson:"total" json:"total"`
}

type BookingPricing struct {
	BasePrice       float64 `bson:"base_price" json:"base_price"`
	Discount        float64 `bson:"discount" json:"discount"`
	Taxes           float64 `bson:"taxes" json:"taxes"`
	ServiceFee      float64 `bson:"service_fee" json:"service_fee"`
	TotalPrice      float64 `bson:"total_price" json:"total_price"`
	PaidAmount      float64 `bson:"paid_amount" json:"paid_amount"`
	RemainingAmount float64 `bson:"remaining_amount" json:"remaining_amount"`
}

type RefundStatus string

const (
	RefundPending  RefundStatus = "pending"
	RefundRejected RefundStatus = "rejected"
	RefundPaid     RefundStatus = "paid"
)

type Cancellation struct {
	IsCancelled    bool         `bson:"is_cancelled" json:"is_cancelled"`
	CancelledAt    *time.Time   `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CancelledBy    string       `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	Reason         string       `bson:"reason,omitempty" json:"reason,omitempty"`
	RefundEligible bool         `bson:"refund_eligible" json:"refund_eligible"`
	RefundAmount   float64      `bson:"refund_amount" json:"refund_amount"`
	RefundStatus   RefundStatus `bson:"refund_status,omitempty" json:"refund_status,omitempty"`
}

type Confirmation struct {
	IsConfirmed      bool       `bson:"is_confirmed" json:"is_confirmed"`
	ConfirmedAt      *time.Time `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"`
	ConfirmationCode string     `bson:"confirmation_code,omitempty" json:"confirmation_code,omitempty"`
}

type RoomDetails struct {
	RoomType string `bson:"room_type,omitempty" json:"room_type,omitempty"`
	Rooms    int    `bson:"rooms" json:"rooms"`
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

type Booking struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Reference   string              `bson:"reference" json:"reference"`
	BookingType BookingType         `bson:"booking_type" json:"booking_type"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	HotelID     *primitive.ObjectID `bson:"hotel_id,omitempty" json:"hotel_id,omitempty"`
	PackageID   *primitive.ObjectID `bson:"package_id,omitempty" json:"package_id,omitempty"`
	PropertyID  *primitive.ObjectID `bson:"property_id,omitempty" json:"property_id,omitempty"`

	CheckIn  time.Time `bson:"check_in" json:"check_in"`
	CheckOut time.Time `bson:"check_out" json:"check_out"`
	// Duration is the stay length in days, ceiling of the check-in/out gap.
	Duration int `bson:"duration" json:"duration"`

	Guests      GuestCount     `bson:"guests" json:"guests"`
	RoomDetails *RoomDetails   `bson:"room_details,omitempty" json:"room_details,omitempty"`
	Pricing     BookingPricing `bson:"pricing" json:"pricing"`

	Status        BookingStatus  `bson:"status" json:"status"`
	StatusHistory []StatusChange `bson:"status_history" json:"status_history"`
	PaymentStatus PaymentStatus  `bson:"payment_status" json:"payment_status"`

	Cancellation Cancellation `bson:"cancellation" json:"cancellation"`
	Confirmation Confirmation `bson:"confirmation" json:"confirmation"`

	SpecialRequests string    `bson:"special_requests,omitempty" json:"special_requests,omitempty"`
	ContactEmail    string    `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

func (b *Booking) BeforeCreate() error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.Reference == "" {
		b.Reference = NewBookingReference(b.BookingType)
	}
	return nil
}

// NewBookingReference builds the human-readable reference: type prefix,
// creation timestamp, random suffix.
func NewBookingReference(t BookingType) string {
	prefix := "BKG"
	switch t {
	case BookingTypeHotel:
		prefix = "HTL"
	case BookingTypePackage:
		prefix = "PKG"
	case BookingTypeProperty:
		prefix = "PRP"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}

// targetCount counts how many of the bookable references are set.
func (b *Booking) targetCount() int {
	n := 0
	if b.HotelID != nil && !b.HotelID.IsZero() {
		n++
	}
	if b.PackageID != nil && !b.PackageID.IsZero() {
		n++
	}
	if b.PropertyID != nil && !b.PropertyID.IsZero() {
		n++
	}
	return n
}

// Validate enforces the save-time invariants: exactly one booking target
// consistent with the booking type, check-out strictly after check-in, and
// sane guest counts.
func (b *Booking) Validate() error {
	if b.targetCount() != 1 {
		return apperr.BadRequest("booking must reference exactly one of hotel, package or property")
	}
	switch b.BookingType {
	case BookingTypeHotel:
		if b.HotelID == nil || b.HotelID.IsZero() {
			return apperr.BadRequest("booking_type is hotel but hotel_id is not set")
		}
	case BookingTypePackage:
		if b.PackageID == nil || b.PackageID.IsZero() {
			return apperr.BadRequest("booking_type is package but package_id is not set")
		}
	case BookingTypeProperty:
		if b.PropertyID == nil || b.PropertyID.IsZero() {
			return apperr.BadRequest("booking_type is property but property_id is not set")
		}
	default:
		return apperr.BadRequest(fmt.Sprintf("unsupported booking_type: %s", b.BookingType))
	}
	if !b.CheckOut.After(b.CheckIn) {
		return apperr.BadRequest("check_out must be after check_in")
	}
	if b.Guests.Adults < 1 {
		return apperr.BadRequest("at least one adult guest is required")
	}
	if b.Guests.Children < 0 || b.Guests.Infants < 0 {
		return apperr.BadRequest("guest counts cannot be negative")
	}
	if b.BookingType == BookingTypeHotel && b.RoomDetails != nil && b.RoomDetails.Rooms < 1 {
		return apperr.BadRequest("hotel bookings must request at least one room")
	}
	return nil
}

// Normalize recomputes the derived fields; it runs before every save.
func (b *Booking) Normalize() {
	b.Guests.Total = b.Guests.Adults + b.Guests.Children + b.Guests.Infants
	b.Pricing.RemainingAmount = b.Pricing.TotalPrice - b.Pricing.PaidAmount
	if b.CheckOut.After(b.CheckIn) {
		b.Duration = int(math.Ceil(b.CheckOut.Sub(b.CheckIn).Hours() / 24))
	}
}

// Transition moves the booking to a new status through the transition table
// and appends the change to the history log.
func (b *Booking) Transition(to BookingStatus, actor, reason string, now time.Time) error {
	if !IsBookingStatus(string(to)) {
		return apperr.BadRequest(fmt.Sprintf("unknown booking status: %s", to))
	}
	if !CanTransition(b.Status, to) {
		return apperr.BadRequest(fmt.Sprintf("cannot transition booking from %s to %s", b.Status, to))
	}
	b.Status = to
	b.StatusHistory = append(b.StatusHistory, StatusChange{
		Status:    to,
		ChangedAt: now,
		ChangedBy: actor,
		Reason:    reason,
	})
	b.UpdatedAt = now
	return nil
}

// RefundPercentage is the tiered cancellation policy: more than 48 hours to
// check-in refunds everything, more than 24 half, otherwise nothing.
func RefundPercentage(hoursUntilCheckIn float64) int {
	switch {
	case hoursUntilCheckIn > 48:
		return 100
	case hoursUntilCheckIn > 24:
		return 50
	default:
		return 0
	}
}

// CanCancel reports whether the booking is still cancellable.
func (b *Booking) CanCancel() bool {
	switch b.Status {
	case BookingCancelled, BookingCompleted, BookingCheckedOut:
		return false
	}
	return true
}

// ApplyCancellation cancels the booking, computing the refund from the hours
// remaining until check-in at the moment of cancellation.
func (b *Booking) ApplyCancellation(actor, reason string, now time.Time) error {
	if !b.CanCancel() {
		return apperr.BadRequest(fmt.Sprintf("booking in status %s cannot be cancelled", b.Status))
	}
	if err := b.Transition(BookingCancelled, actor, reason, now); err != nil {
		return err
	}
	pct := RefundPercentage(b.CheckIn.Sub(now).Hours())
	refund := b.Pricing.TotalPrice * float64(pct) / 100

	b.Cancellation = Cancellation{
		IsCancelled:    true,
		CancelledAt:    &now,
		CancelledBy:    actor,
		Reason:         reason,
		RefundEligible: pct > 0,
		RefundAmount:   refund,
	}
	if pct > 0 {
		b.Cancellation.RefundStatus = RefundPending
	} else {
		b.Cancellation.RefundStatus = RefundRejected
	}
	return nil
}

// ApplyConfirmation confirms a pending booking and stamps the confirmation
// code and time.
func (b *Booking) ApplyConfirmation(actor string, now time.Time) error {
	if b.Status != BookingPending {
		return apperr.BadRequest(fmt.Sprintf("only pending bookings can be confirmed, current status: %s", b.Status))
	}
	if err := b.Transition(BookingConfirmed, actor, "booking confirmed", now); err != nil {
		return err
	}
	code := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	b.Confirmation = Confirmation{
		IsConfirmed:      true,
		ConfirmedAt:      &now,
		ConfirmationCode: code,
	}
	return nil
}

// ApplyPayment records a payment amount and recomputes the payment sub-state
// without touching the booking status.
func (b *Booking) ApplyPayment(paidAmount float64, status PaymentStatus, now time.Time) error {
	if paidAmount < 0 {
		return apperr.BadRequest("paid_amount cannot be negative")
	}
	switch status {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded, PaymentFailed:
	default:
		return apperr.BadRequest(fmt.Sprintf("unknown payment status: %s", status))
	}
	b.Pricing.PaidAmount = paidAmount
	b.Pricing.RemainingAmount = b.Pricing.TotalPrice - paidAmount
	b.PaymentStatus = status
	b.UpdatedAt = now
	return nil
}
