package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/helpers"
	"github.com/wanderbay/wanderbay-api/internal/middleware"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"github.com/wanderbay/wanderbay-api/internal/services"
)

func CreateCoupon(s *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var coupon models.Coupon
		if err := c.ShouldBindJSON(&coupon); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		created, err := s.CreateCoupon(c.Request.Context(), &coupon, userID)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "coupon created successfully"))
	}
}

func GetCoupon(s *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		coupon, err := s.GetCoupon(c.Request.Context(), id)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(coupon, ""))
	}
}

func ListCoupons(s *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := helpers.ParseListOptions(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		coupons, total, err := s.ListCoupons(c.Request.Context(), c.Query("search"), opts)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(coupons, opts.Page, opts.Limit, total))
	}
}

func UpdateCoupon(s *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var update models.Coupon
		if err := c.ShouldBindJSON(&update); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		coupon, err := s.UpdateCoupon(c.Request.Context(), id, &update)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(coupon, "coupon updated successfully"))
	}
}

func DeleteCoupon(s *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		if err := s.DeleteCoupon(c.Request.Context(), id); err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "coupon deleted successfully"))
	}
}

type couponOrderPayload struct {
	PackageID   string  `json:"package_id" binding:"required"`
	OrderAmount float64 `json:"order_amount" binding:"required,gt=0"`
}

// ValidateCoupon is the dry-run endpoint: it reports every failing rule and
// the discount without consuming a redemption.
func ValidateCoupon(s *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var payload couponOrderPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			middleware.Abort(c, apperr.BadRequest("package_id and order_amount are required").WithDetails(err.Error()))
			return
		}
		packageID, err := pathIDFromString(payload.PackageID)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		validation, err := s.ValidateCoupon(c.Request.Context(), id, userID, packageID, payload.OrderAmount)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(validation, ""))
	}
}

func UseCoupon(s *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var payload couponOrderPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			middleware.Abort(c, apperr.BadRequest("package_id and order_amount are required").WithDetails(err.Error()))
			return
		}
		packageID, err := pathIDFromString(payload.PackageID)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		validation, err := s.UseCoupon(c.Request.Context(), id, userID, packageID, payload.OrderAmount)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		if !validation.IsValid {
			resp := models.ErrorResponse("coupon is not valid for this order", "BAD_REQUEST", strings.Join(validation.Errors, "; "))
			resp.Data = validation
			c.JSON(http.StatusBadRequest, resp)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(validation, "coupon applied successfully"))
	}
}
