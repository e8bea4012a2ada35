package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func activeCoupon() *Coupon {
	now := time.Now()
	return &Coupon{
		ID:           primitive.NewObjectID(),
		Code:         "SAVE20",
		Discount:     20,
		DiscountType: DiscountPercentage,
		Eligibility:  EligibilityAll,
		StartDate:    now.Add(-24 * time.Hour),
		ExpiryDate:   now.Add(24 * time.Hour),
		IsActive:     true,
	}
}

func TestCalculateDiscount(t *testing.T) {
	c := activeCoupon()

	if got := c.CalculateDiscount(500); got != 100 {
		t.Errorf("20%% of 500 should be 100, got %v", got)
	}

	// Capped by maximum discount.
	c.MaximumDiscount = 50
	if got := c.CalculateDiscount(1000); got != 50 {
		t.Errorf("discount should cap at 50, got %v", got)
	}

	// Fixed discount never exceeds the order amount.
	c = activeCoupon()
	c.DiscountType = DiscountFixed
	c.Discount = 80
	if got := c.CalculateDiscount(60); got != 60 {
		t.Errorf("fixed discount should cap at order amount 60, got %v", got)
	}
	if got := c.CalculateDiscount(200); got != 80 {
		t.Errorf("fixed discount should be 80, got %v", got)
	}

	if got := c.CalculateDiscount(0); got != 0 {
		t.Errorf("zero order amount should give zero discount, got %v", got)
	}
}

func TestIsCurrentlyValid(t *testing.T) {
	now := time.Now()
	c := activeCoupon()
	if !c.IsCurrentlyValid(now) {
		t.Error("active coupon inside window should be valid")
	}

	c.IsActive = false
	if c.IsCurrentlyValid(now) {
		t.Error("inactive coupon should not be valid")
	}

	c = activeCoupon()
	c.StartDate = now.Add(time.Hour)
	if c.IsCurrentlyValid(now) {
		t.Error("not-yet-started coupon should not be valid")
	}

	c = activeCoupon()
	c.ExpiryDate = now.Add(-time.Hour)
	if c.IsCurrentlyValid(now) {
		t.Error("expired coupon should not be valid")
	}

	c = activeCoupon()
	c.UsageLimit = 5
	c.UsedCount = 5
	if c.IsCurrentlyValid(now) {
		t.Error("exhausted coupon should not be valid")
	}

	// Zero usage limit means unlimited.
	c.UsageLimit = 0
	c.UsedCount = 10000
	if !c.IsCurrentlyValid(now) {
		t.Error("coupon without usage limit should stay valid")
	}
}

func TestValidateForOrderCollectsAllErrors(t *testing.T) {
	now := time.Now()
	pkgID := primitive.NewObjectID()
	otherPkg := primitive.NewObjectID()

	c := activeCoupon()
	c.IsActive = false
	c.ExpiryDate = now.Add(-time.Hour)
	c.UsageLimit = 1
	c.UsedCount = 1
	c.Eligibility = EligibilitySpecific
	c.SpecificPackage = &otherPkg
	c.MinimumOrderAmount = 1000

	result := c.ValidateForOrder(pkgID, UserOrderStats{TotalOrders: 3}, 500, now)
	if result.IsValid {
		t.Fatal("coupon with many failures should not validate")
	}
	if len(result.Errors) < 5 {
		t.Errorf("expected every failing rule reported, got %d: %v", len(result.Errors), result.Errors)
	}
	if result.DiscountAmount != 0 {
		t.Errorf("invalid coupon must not carry a discount, got %v", result.DiscountAmount)
	}

	found := map[string]bool{}
	for _, e := range result.Errors {
		found[e] = true
	}
	for _, want := range []string{
		"coupon is not active",
		"coupon has expired",
		"coupon usage limit exceeded",
		"coupon is not applicable to this package",
		"order amount is below the coupon minimum",
	} {
		if !found[want] {
			t.Errorf("missing error %q in %v", want, result.Errors)
		}
	}
}

func TestValidateForOrderUserRestrictions(t *testing.T) {
	now := time.Now()
	pkgID := primitive.NewObjectID()

	c := activeCoupon()
	c.UserRestrictions.NewUsersOnly = true
	result := c.ValidateForOrder(pkgID, UserOrderStats{TotalOrders: 2}, 500, now)
	if result.IsValid {
		t.Error("new-users-only coupon should reject an existing user")
	}
	result = c.ValidateForOrder(pkgID, UserOrderStats{TotalOrders: 0}, 500, now)
	if !result.IsValid {
		t.Errorf("new-users-only coupon should accept a new user: %v", result.Errors)
	}

	c = activeCoupon()
	c.UserRestrictions.ExistingUsersOnly = true
	result = c.ValidateForOrder(pkgID, UserOrderStats{TotalOrders: 0}, 500, now)
	if result.IsValid {
		t.Error("existing-users-only coupon should reject a new user")
	}

	c = activeCoupon()
	c.UserRestrictions.MinimumOrders = 5
	result = c.ValidateForOrder(pkgID, UserOrderStats{TotalOrders: 3}, 500, now)
	if result.IsValid {
		t.Error("minimum-orders coupon should reject a user below the threshold")
	}
}

func TestValidateForOrderEligibility(t *testing.T) {
	now := time.Now()
	pkgID := primitive.NewObjectID()
	otherPkg := primitive.NewObjectID()

	c := activeCoupon()
	c.Eligibility = EligibilitySelected
	c.ApplicablePackages = []primitive.ObjectID{pkgID}
	if result := c.ValidateForOrder(pkgID, UserOrderStats{}, 500, now); !result.IsValid {
		t.Errorf("selected coupon should apply to listed package: %v", result.Errors)
	}
	if result := c.ValidateForOrder(otherPkg, UserOrderStats{}, 500, now); result.IsValid {
		t.Error("selected coupon should not apply to an unlisted package")
	}

	c = activeCoupon()
	c.Eligibility = EligibilitySpecific
	c.SpecificPackage = &pkgID
	if result := c.ValidateForOrder(pkgID, UserOrderStats{}, 500, now); !result.IsValid {
		t.Errorf("specific coupon should apply to its package: %v", result.Errors)
	}
	if result := c.ValidateForOrder(otherPkg, UserOrderStats{}, 500, now); result.IsValid {
		t.Error("specific coupon should not apply to another package")
	}
}

func TestValidateForOrderDiscount(t *testing.T) {
	now := time.Now()
	c := activeCoupon()
	c.MaximumDiscount = 50

	result := c.ValidateForOrder(primitive.NewObjectID(), UserOrderStats{}, 1000, now)
	if !result.IsValid {
		t.Fatalf("expected valid coupon, got errors: %v", result.Errors)
	}
	// 20% of 1000 is 200, capped at 50.
	if result.DiscountAmount != 50 {
		t.Errorf("expected capped discount 50, got %v", result.DiscountAmount)
	}
}

func TestCouponBeforeCreateNormalizesCode(t *testing.T) {
	c := &Coupon{Code: "  save20 "}
	if err := c.BeforeCreate(); err != nil {
		t.Fatalf("BeforeCreate failed: %v", err)
	}
	if c.Code != "SAVE20" {
		t.Errorf("expected code SAVE20, got %q", c.Code)
	}
	if c.ID.IsZero() {
		t.Error("expected id to be assigned")
	}
}
