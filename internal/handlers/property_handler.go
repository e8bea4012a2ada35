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

type propertyPayload struct {
	models.Property
	ImageData []string `json:"image_data,omitempty"`
}

func CreateProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var payload propertyPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		property, err := p.CreateProperty(c.Request.Context(), &payload.Property, payload.ImageData, userID)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(property, "property created successfully"))
	}
}

func GetProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		property, err := p.GetProperty(c.Request.Context(), id)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(property, ""))
	}
}

func ListProperties(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := helpers.ParseListOptions(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		properties, total, err := p.ListProperties(c.Request.Context(), c.Query("search"), opts)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(properties, opts.Page, opts.Limit, total))
	}
}

func UpdateProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var payload propertyPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		property, err := p.UpdateProperty(c.Request.Context(), id, &payload.Property, payload.ImageData)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(property, "property updated successfully"))
	}
}

func DeleteProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		if err := p.DeleteProperty(c.Request.Context(), id); err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "property deleted successfully"))
	}
}
