package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/helpers"
	"github.com/wanderbay/wanderbay-api/internal/middleware"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"github.com/wanderbay/wanderbay-api/internal/services"
)

func CreateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var input services.CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		booking, err := b.CreateBooking(c.Request.Context(), userID, input)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(booking, "booking created successfully"))
	}
}

func GetBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		booking, err := b.GetBooking(c.Request.Context(), id, userID, claims.IsAdmin())
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, ""))
	}
}

// ListBookings returns the caller's bookings; admins see everyone's and can
// filter by user_id and status.
func ListBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		opts, err := helpers.ParseListOptions(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}

		filter := models.BookingFilter{
			Status: models.BookingStatus(c.Query("status")),
			Search: c.Query("search"),
		}
		if claims.IsAdmin() {
			if raw := c.Query("user_id"); raw != "" {
				uid, err := pathIDFromString(raw)
				if err != nil {
					middleware.Abort(c, err)
					return
				}
				filter.UserID = &uid
			}
		} else {
			filter.UserID = &userID
		}

		bookings, total, err := b.ListBookings(c.Request.Context(), filter, opts)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, opts.Page, opts.Limit, total))
	}
}

func CancelBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var body struct {
			Reason string `json:"reason"`
		}
		// Body is optional for cancellations.
		_ = c.ShouldBindJSON(&body)

		booking, err := b.CancelBooking(c.Request.Context(), id, userID, claims.IsAdmin(), body.Reason)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "booking cancelled successfully"))
	}
}

func ConfirmBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		booking, err := b.ConfirmBooking(c.Request.Context(), id, claims.UserID)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "booking confirmed successfully"))
	}
}

func UpdateBookingStatus(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var body struct {
			Status string `json:"status" binding:"required"`
			Reason string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			middleware.Abort(c, apperr.BadRequest("status is required").WithDetails(err.Error()))
			return
		}
		booking, err := b.UpdateBookingStatus(c.Request.Context(), id, models.BookingStatus(body.Status), claims.UserID, body.Reason)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "booking status updated"))
	}
}

func UpdateBookingPayment(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var body struct {
			PaidAmount    float64 `json:"paid_amount" binding:"gte=0"`
			PaymentStatus string  `json:"payment_status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid payment data").WithDetails(err.Error()))
			return
		}
		booking, err := b.UpdatePaymentStatus(c.Request.Context(), id, body.PaidAmount, models.PaymentStatus(body.PaymentStatus))
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "payment status updated"))
	}
}

func DeleteBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		if err := b.DeleteBooking(c.Request.Context(), id); err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "booking deleted successfully"))
	}
}
