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

// hotelPayload is the write shape for hotels: the document fields plus raw
// image payloads destined for cloudinary.
type hotelPayload struct {
	models.Hotel
	ImageData []string `json:"image_data,omitempty"`
}

func CreateHotel(h *services.HotelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var payload hotelPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		hotel, err := h.CreateHotel(c.Request.Context(), &payload.Hotel, payload.ImageData, userID)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(hotel, "hotel created successfully"))
	}
}

func GetHotel(h *services.HotelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		hotel, err := h.GetHotel(c.Request.Context(), id)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(hotel, ""))
	}
}

func ListHotels(h *services.HotelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := helpers.ParseListOptions(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		hotels, total, err := h.ListHotels(c.Request.Context(), c.Query("search"), opts)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(hotels, opts.Page, opts.Limit, total))
	}
}

func UpdateHotel(h *services.HotelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var payload hotelPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		hotel, err := h.UpdateHotel(c.Request.Context(), id, &payload.Hotel, payload.ImageData)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(hotel, "hotel updated successfully"))
	}
}

func DeleteHotel(h *services.HotelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		if err := h.DeleteHotel(c.Request.Context(), id); err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "hotel deleted successfully"))
	}
}

type reviewPayload struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func AddHotelReview(h *services.HotelService) gin.HandlerFunc {
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
		var payload reviewPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			middleware.Abort(c, apperr.BadRequest("rating must be between 1 and 5").WithDetails(err.Error()))
			return
		}
		hotel, err := h.AddReview(c.Request.Context(), id, userID, payload.Rating, payload.Comment)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(hotel, "review added successfully"))
	}
}

func UpdateHotelReview(h *services.HotelService) gin.HandlerFunc {
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
		var payload reviewPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			middleware.Abort(c, apperr.BadRequest("rating must be between 1 and 5").WithDetails(err.Error()))
			return
		}
		hotel, err := h.UpdateReview(c.Request.Context(), id, userID, payload.Rating, payload.Comment)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(hotel, "review updated successfully"))
	}
}

func RemoveHotelReview(h *services.HotelService) gin.HandlerFunc {
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
		hotel, err := h.RemoveReview(c.Request.Context(), id, userID)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(hotel, "review removed successfully"))
	}
}
