package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type CouponEligibility string

const (
	// EligibilityAll applies to every package.
	EligibilityAll CouponEligibility = "all"
	// EligibilitySelected applies to an explicit list of packages.
	EligibilitySelected CouponEligibility = "selected"
	// EligibilitySpecific applies to exactly one package.
	EligibilitySpecific CouponEligibility = "specific"
)

type UserRestrictions struct {
	NewUsersOnly      bool `bson:"new_users_only" json:"new_users_only"`
	ExistingUsersOnly bool `bson:"existing_users_only" json:"existing_users_only"`
	MinimumOrders     int  `bson:"minimum_orders" json:"minimum_orders"`
}

type CouponAnalytics struct {
	TotalRedemptions   int        `bson:"total_redemptions" json:"total_redemptions"`
	TotalDiscountGiven float64    `bson:"total_discount_given" json:"total_discount_given"`
	LastUsedAt         *time.Time `bson:"last_used_at,omitempty" json:"last_used_at,omitempty"`
	LastUsedBy         string     `bson:"last_used_by,omitempty" json:"last_used_by,omitempty"`
}

type Coupon struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code         string             `bson:"code" json:"code" validate:"required"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Discount     float64            `bson:"discount" json:"discount" validate:"gt=0"`
	DiscountType DiscountType       `bson:"discount_type" json:"discount_type" validate:"required,oneof=percentage fixed"`

	// MaximumDiscount caps the computed discount when set (> 0).
	MaximumDiscount    float64 `bson:"maximum_discount,omitempty" json:"maximum_discount,omitempty"`
	MinimumOrderAmount float64 `bson:"minimum_order_amount,omitempty" json:"minimum_order_amount,omitempty"`

	Eligibility        CouponEligibility    `bson:"eligibility" json:"eligibility" validate:"required,oneof=all selected specific"`
	ApplicablePackages []primitive.ObjectID `bson:"applicable_packages,omitempty" json:"applicable_packages,omitempty"`
	SpecificPackage    *primitive.ObjectID  `bson:"specific_package,omitempty" json:"specific_package,omitempty"`

	// UsageLimit of 0 means unlimited.
	UsageLimit int `bson:"usage_limit" json:"usage_limit"`
	UsedCount  int `bson:"used_count" json:"used_count"`

	StartDate  time.Time `bson:"start_date" json:"start_date"`
	ExpiryDate time.Time `bson:"expiry_date" json:"expiry_date"`
	IsActive   bool      `bson:"is_active" json:"is_active"`

	UserRestrictions UserRestrictions `bson:"user_restrictions" json:"user_restrictions"`
	Analytics        CouponAnalytics  `bson:"analytics" json:"analytics"`

	CreatedBy primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (c *Coupon) BeforeCreate() error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	return nil
}

// UserOrderStats is the caller-supplied view of the redeeming user, consumed
// by the user-restriction checks.
type UserOrderStats struct {
	TotalOrders int `json:"total_orders"`
}

func (s UserOrderStats) IsNewUser() bool {
	return s.TotalOrders == 0
}

// CouponValidation is the outcome of ValidateForOrder: all failing reasons
// are collected, never just the first.
type CouponValidation struct {
	IsValid        bool     `json:"isValid"`
	Errors         []string `json:"errors"`
	DiscountAmount float64  `json:"discountAmount"`
}

// IsCurrentlyValid reports overall validity: active, inside the validity
// window, and usage headroom remaining.
func (c *Coupon) IsCurrentlyValid(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.StartDate) || now.After(c.ExpiryDate) {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	return true
}

func (c *Coupon) appliesToPackage(packageID primitive.ObjectID) bool {
	switch c.Eligibility {
	case EligibilityAll:
		return true
	case EligibilitySpecific:
		return c.SpecificPackage != nil && *c.SpecificPackage == packageID
	case EligibilitySelected:
		for _, id := range c.ApplicablePackages {
			if id == packageID {
				return true
			}
		}
	}
	return false
}

// CalculateDiscount computes the discount for an order amount. The result is
// capped by MaximumDiscount when set and never exceeds the order amount.
func (c *Coupon) CalculateDiscount(orderAmount float64) float64 {
	if orderAmount <= 0 {
		return 0
	}
	var discount float64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = orderAmount * c.Discount / 100
	case DiscountFixed:
		discount = c.Discount
	}
	if c.MaximumDiscount > 0 && discount > c.MaximumDiscount {
		discount = c.MaximumDiscount
	}
	if discount > orderAmount {
		discount = orderAmount
	}
	return discount
}

// ValidateForOrder runs every eligibility rule independently and collects all
// failures; DiscountAmount is only set when the coupon is valid.
func (c *Coupon) ValidateForOrder(packageID primitive.ObjectID, stats UserOrderStats, orderAmount float64, now time.Time) CouponValidation {
	result := CouponValidation{Errors: []string{}}

	if !c.IsActive {
		result.Errors = append(result.Errors, "coupon is not active")
	}
	if now.Before(c.StartDate) {
		result.Errors = append(result.Errors, "coupon is not yet valid")
	}
	if now.After(c.ExpiryDate) {
		result.Errors = append(result.Errors, "coupon has expired")
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		result.Errors = append(result.Errors, "coupon usage limit exceeded")
	}
	if !c.appliesToPackage(packageID) {
		result.Errors = append(result.Errors, "coupon is not applicable to this package")
	}
	if c.UserRestrictions.NewUsersOnly && !stats.IsNewUser() {
		result.Errors = append(result.Errors, "coupon is restricted to new users")
	}
	if c.UserRestrictions.ExistingUsersOnly && stats.IsNewUser() {
		result.Errors = append(result.Errors, "coupon is restricted to existing users")
	}
	if c.UserRestrictions.MinimumOrders > 0 && stats.TotalOrders < c.UserRestrictions.MinimumOrders {
		result.Errors = append(result.Errors, "user does not meet the minimum order count for this coupon")
	}
	if c.MinimumOrderAmount > 0 && orderAmount < c.MinimumOrderAmount {
		result.Errors = append(result.Errors, "order amount is below the coupon minimum")
	}

	result.IsValid = len(result.Errors) == 0
	if result.IsValid {
		result.DiscountAmount = c.CalculateDiscount(orderAmount)
	}
	return result
}
