package models

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func hotelBooking() *Booking {
	hotelID := primitive.NewObjectID()
	checkIn := time.Now().Add(72 * time.Hour)
	return &Booking{
		BookingType: BookingTypeHotel,
		UserID:      primitive.NewObjectID(),
		HotelID:     &hotelID,
		CheckIn:     checkIn,
		CheckOut:    checkIn.Add(48 * time.Hour),
		Guests:      GuestCount{Adults: 2, Children: 1},
		RoomDetails: &RoomDetails{RoomType: "deluxe", Rooms: 1},
		Status:      BookingPending,
		Pricing:     BookingPricing{TotalPrice: 1000},
	}
}

func TestBookingValidate(t *testing.T) {
	b := hotelBooking()
	if err := b.Validate(); err != nil {
		t.Fatalf("valid booking rejected: %v", err)
	}

	// No target set
	b = hotelBooking()
	b.HotelID = nil
	if err := b.Validate(); err == nil {
		t.Error("expected error for booking without a target")
	}

	// Two targets set
	b = hotelBooking()
	pkgID := primitive.NewObjectID()
	b.PackageID = &pkgID
	if err := b.Validate(); err == nil {
		t.Error("expected error for booking with two targets")
	}

	// Type does not match reference
	b = hotelBooking()
	b.BookingType = BookingTypePackage
	if err := b.Validate(); err == nil {
		t.Error("expected error when booking_type does not match the set reference")
	}

	// Check-out before check-in
	b = hotelBooking()
	b.CheckOut = b.CheckIn.Add(-time.Hour)
	if err := b.Validate(); err == nil {
		t.Error("expected error when check_out is before check_in")
	}

	// No adults
	b = hotelBooking()
	b.Guests.Adults = 0
	if err := b.Validate(); err == nil {
		t.Error("expected error when no adult guest is present")
	}

	// Zero rooms on a hotel booking
	b = hotelBooking()
	b.RoomDetails.Rooms = 0
	if err := b.Validate(); err == nil {
		t.Error("expected error when hotel booking requests zero rooms")
	}
}

func TestBookingNormalize(t *testing.T) {
	b := hotelBooking()
	b.Pricing.TotalPrice = 1000
	b.Pricing.PaidAmount = 400
	b.Normalize()

	if b.Guests.Total != 3 {
		t.Errorf("expected guest total 3, got %d", b.Guests.Total)
	}
	if b.Pricing.RemainingAmount != 600 {
		t.Errorf("expected remaining amount 600, got %v", b.Pricing.RemainingAmount)
	}
	if b.Duration != 2 {
		t.Errorf("expected 2 day duration, got %d", b.Duration)
	}

	// Partial days round up.
	b.CheckOut = b.CheckIn.Add(50 * time.Hour)
	b.Normalize()
	if b.Duration != 3 {
		t.Errorf("expected partial day to round up to 3, got %d", b.Duration)
	}
}

func TestBookingTransitions(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		allowed  bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingNoShow, true},
		{BookingPending, BookingCheckedIn, false},
		{BookingConfirmed, BookingCheckedIn, true},
		{BookingConfirmed, BookingCompleted, true},
		{BookingCheckedIn, BookingCheckedOut, true},
		{BookingCheckedIn, BookingNoShow, false},
		{BookingCheckedOut, BookingCompleted, true},
		{BookingCheckedOut, BookingCancelled, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCompleted, BookingPending, false},
		{BookingNoShow, BookingConfirmed, false},
		{BookingNoShow, BookingCancelled, true},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestTransitionRecordsHistory(t *testing.T) {
	b := hotelBooking()
	now := time.Now()

	if err := b.Transition(BookingConfirmed, "admin-1", "payment received", now); err != nil {
		t.Fatalf("legal transition failed: %v", err)
	}
	if b.Status != BookingConfirmed {
		t.Errorf("expected status confirmed, got %s", b.Status)
	}
	if len(b.StatusHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(b.StatusHistory))
	}
	entry := b.StatusHistory[0]
	if entry.Status != BookingConfirmed || entry.ChangedBy != "admin-1" || entry.Reason != "payment received" {
		t.Errorf("history entry not recorded correctly: %+v", entry)
	}

	if err := b.Transition(BookingPending, "admin-1", "", now); err == nil {
		t.Error("expected error for illegal transition confirmed -> pending")
	}
	if err := b.Transition(BookingStatus("archived"), "admin-1", "", now); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestRefundPercentage(t *testing.T) {
	cases := []struct {
		hours float64
		want  int
	}{
		{100, 100},
		{48.5, 100},
		{48, 50},
		{30, 50},
		{24.1, 50},
		{24, 0},
		{5, 0},
		{-2, 0},
	}
	for _, tc := range cases {
		if got := RefundPercentage(tc.hours); got != tc.want {
			t.Errorf("RefundPercentage(%v) = %d, want %d", tc.hours, got, tc.want)
		}
	}
}

func TestApplyCancellation(t *testing.T) {
	// More than 48h out: full refund.
	b := hotelBooking()
	now := b.CheckIn.Add(-72 * time.Hour)
	if err := b.ApplyCancellation("user-1", "change of plans", now); err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}
	if b.Status != BookingCancelled {
		t.Errorf("expected cancelled status, got %s", b.Status)
	}
	if !b.Cancellation.RefundEligible || b.Cancellation.RefundAmount != 1000 {
		t.Errorf("expected full refund of 1000, got %v (eligible=%v)", b.Cancellation.RefundAmount, b.Cancellation.RefundEligible)
	}
	if b.Cancellation.RefundStatus != RefundPending {
		t.Errorf("expected refund status pending, got %s", b.Cancellation.RefundStatus)
	}

	// Between 24 and 48h: half refund.
	b = hotelBooking()
	now = b.CheckIn.Add(-30 * time.Hour)
	if err := b.ApplyCancellation("user-1", "", now); err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}
	if b.Cancellation.RefundAmount != 500 {
		t.Errorf("expected half refund of 500, got %v", b.Cancellation.RefundAmount)
	}

	// Inside 24h: no refund, refund marked rejected.
	b = hotelBooking()
	now = b.CheckIn.Add(-2 * time.Hour)
	if err := b.ApplyCancellation("user-1", "", now); err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}
	if b.Cancellation.RefundEligible || b.Cancellation.RefundAmount != 0 {
		t.Errorf("expected no refund, got %v (eligible=%v)", b.Cancellation.RefundAmount, b.Cancellation.RefundEligible)
	}
	if b.Cancellation.RefundStatus != RefundRejected {
		t.Errorf("expected refund status rejected, got %s", b.Cancellation.RefundStatus)
	}
}

func TestCancellationTerminalGuards(t *testing.T) {
	for _, status := range []BookingStatus{BookingCancelled, BookingCompleted, BookingCheckedOut} {
		b := hotelBooking()
		b.Status = status
		if err := b.ApplyCancellation("user-1", "", time.Now()); err == nil {
			t.Errorf("expected cancellation of %s booking to fail", status)
		}
	}
}

func TestCancelNoShowBooking(t *testing.T) {
	b := hotelBooking()
	b.Status = BookingNoShow
	if !b.CanCancel() {
		t.Fatal("expected a no_show booking to be cancellable")
	}
	if err := b.ApplyCancellation("admin-1", "guest disputed no-show", time.Now()); err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}
	if b.Status != BookingCancelled {
		t.Errorf("expected cancelled status, got %s", b.Status)
	}
}

func TestApplyConfirmation(t *testing.T) {
	b := hotelBooking()
	now := time.Now()
	if err := b.ApplyConfirmation("admin-1", now); err != nil {
		t.Fatalf("confirmation failed: %v", err)
	}
	if b.Status != BookingConfirmed || !b.Confirmation.IsConfirmed {
		t.Error("booking not confirmed")
	}
	if len(b.Confirmation.ConfirmationCode) != 8 {
		t.Errorf("expected 8 character confirmation code, got %q", b.Confirmation.ConfirmationCode)
	}
	if b.Confirmation.ConfirmationCode != strings.ToUpper(b.Confirmation.ConfirmationCode) {
		t.Errorf("expected uppercase confirmation code, got %q", b.Confirmation.ConfirmationCode)
	}

	// Confirming twice fails.
	if err := b.ApplyConfirmation("admin-1", now); err == nil {
		t.Error("expected second confirmation to fail")
	}
}

func TestApplyPayment(t *testing.T) {
	b := hotelBooking()
	now := time.Now()

	if err := b.ApplyPayment(400, PaymentPartial, now); err != nil {
		t.Fatalf("payment update failed: %v", err)
	}
	if b.Pricing.PaidAmount != 400 || b.Pricing.RemainingAmount != 600 {
		t.Errorf("payment amounts wrong: paid=%v remaining=%v", b.Pricing.PaidAmount, b.Pricing.RemainingAmount)
	}
	if b.PaymentStatus != PaymentPartial {
		t.Errorf("expected partial payment status, got %s", b.PaymentStatus)
	}
	if b.Status != BookingPending {
		t.Errorf("payment update must not touch booking status, got %s", b.Status)
	}

	if err := b.ApplyPayment(-1, PaymentPaid, now); err == nil {
		t.Error("expected error for negative paid amount")
	}
	if err := b.ApplyPayment(100, PaymentStatus("settled"), now); err == nil {
		t.Error("expected error for unknown payment status")
	}
}

func TestBookingReference(t *testing.T) {
	cases := []struct {
		t      BookingType
		prefix string
	}{
		{BookingTypeHotel, "HTL"},
		{BookingTypePackage, "PKG"},
		{BookingTypeProperty, "PRP"},
	}
	for _, tc := range cases {
		ref := NewBookingReference(tc.t)
		if !strings.HasPrefix(ref, tc.prefix+"-") {
			t.Errorf("reference %q does not start with %s-", ref, tc.prefix)
		}
		parts := strings.Split(ref, "-")
		if len(parts) != 3 || len(parts[2]) != 6 {
			t.Errorf("reference %q is not prefix-timestamp-suffix shaped", ref)
		}
	}

	if NewBookingReference(BookingTypeHotel) == NewBookingReference(BookingTypeHotel) {
		t.Error("expected distinct references for successive calls")
	}
}
