package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CouponService struct {
	coupons models.CouponRepo
	users   models.UserRepo
	logger  *slog.Logger
}

func NewCouponService(coupons models.CouponRepo, users models.UserRepo, logger *slog.Logger) *CouponService {
	return &CouponService{coupons: coupons, users: users, logger: logger}
}

func (cs *CouponService) CreateCoupon(ctx context.Context, coupon *models.Coupon, createdBy primitive.ObjectID) (*models.Coupon, error) {
	if err := coupon.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(coupon); err != nil {
		return nil, apperr.BadRequest("invalid coupon data").WithDetails(err.Error())
	}
	if !coupon.ExpiryDate.After(coupon.StartDate) {
		return nil, apperr.BadRequest("expiry_date must be after start_date")
	}
	if coupon.DiscountType == models.DiscountPercentage && coupon.Discount > 100 {
		return nil, apperr.BadRequest("percentage discount cannot exceed 100")
	}
	coupon.CreatedBy = createdBy
	now := time.Now()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now
	return cs.coupons.CreateCoupon(ctx, coupon)
}

func (cs *CouponService) GetCoupon(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	coupon, err := cs.coupons.GetCouponByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, apperr.NotFound("coupon not found")
	}
	return coupon, nil
}

func (cs *CouponService) ListCoupons(ctx context.Context, search string, opts models.ListOptions) ([]*models.Coupon, int64, error) {
	if opts.Limit <= 0 {
		return nil, 0, apperr.BadRequest("invalid limit")
	}
	return cs.coupons.ListCoupons(ctx, search, opts)
}

func (cs *CouponService) UpdateCoupon(ctx context.Context, id primitive.ObjectID, update *models.Coupon) (*models.Coupon, error) {
	coupon, err := cs.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Description != "" {
		coupon.Description = update.Description
	}
	if update.Discount > 0 {
		coupon.Discount = update.Discount
	}
	if update.DiscountType != "" {
		coupon.DiscountType = update.DiscountType
	}
	if update.MaximumDiscount > 0 {
		coupon.MaximumDiscount = update.MaximumDiscount
	}
	if update.MinimumOrderAmount > 0 {
		coupon.MinimumOrderAmount = update.MinimumOrderAmount
	}
	if update.Eligibility != "" {
		coupon.Eligibility = update.Eligibility
		coupon.ApplicablePackages = update.ApplicablePackages
		coupon.SpecificPackage = update.SpecificPackage
	}
	if update.UsageLimit > 0 {
		coupon.UsageLimit = update.UsageLimit
	}
	if !update.StartDate.IsZero() {
		coupon.StartDate = update.StartDate
	}
	if !update.ExpiryDate.IsZero() {
		coupon.ExpiryDate = update.ExpiryDate
	}
	coupon.IsActive = update.IsActive
	coupon.UserRestrictions = update.UserRestrictions
	coupon.UpdatedAt = time.Now()

	if coupon.DiscountType == models.DiscountPercentage && coupon.Discount > 100 {
		return nil, apperr.BadRequest("percentage discount cannot exceed 100")
	}
	if !coupon.ExpiryDate.After(coupon.StartDate) {
		return nil, apperr.BadRequest("expiry_date must be after start_date")
	}

	if err := cs.coupons.ReplaceCoupon(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (cs *CouponService) DeleteCoupon(ctx context.Context, id primitive.ObjectID) error {
	if _, err := cs.GetCoupon(ctx, id); err != nil {
		return err
	}
	return cs.coupons.DeleteCoupon(ctx, id)
}

// ValidateCoupon runs the full rule set against a prospective order and
// returns every failure; it never mutates the coupon.
func (cs *CouponService) ValidateCoupon(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, packageID primitive.ObjectID, orderAmount float64) (*models.CouponValidation, error) {
	coupon, err := cs.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := cs.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	validation := coupon.ValidateForOrder(packageID, user.OrderStats(), orderAmount, time.Now())
	return &validation, nil
}

// UseCoupon re-validates and then redeems through the guarded counter update,
// so two concurrent redemptions can never push used_count past the limit.
func (cs *CouponService) UseCoupon(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, packageID primitive.ObjectID, orderAmount float64) (*models.CouponValidation, error) {
	validation, err := cs.ValidateCoupon(ctx, id, userID, packageID, orderAmount)
	if err != nil {
		return nil, err
	}
	if !validation.IsValid {
		return validation, nil
	}
	if _, err := cs.coupons.RedeemCoupon(ctx, id, userID, validation.DiscountAmount); err != nil {
		return nil, err
	}
	return validation, nil
}
