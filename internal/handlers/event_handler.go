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

func CreateEvent(s *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var event models.Event
		if err := c.ShouldBindJSON(&event); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		created, err := s.CreateEvent(c.Request.Context(), &event, userID, claims.IsAdmin())
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "event created successfully"))
	}
}

func GetEvent(s *services.EventService) gin.HandlerFunc {
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
		event, err := s.GetEvent(c.Request.Context(), id, userID, claims.IsAdmin())
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

func ListEvents(s *services.EventService) gin.HandlerFunc {
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
		events, total, err := s.ListEvents(c.Request.Context(), userID, claims.IsAdmin(), opts)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(events, opts.Page, opts.Limit, total))
	}
}

func UpdateEvent(s *services.EventService) gin.HandlerFunc {
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
		var update models.Event
		if err := c.ShouldBindJSON(&update); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		event, err := s.UpdateEvent(c.Request.Context(), id, userID, claims.IsAdmin(), &update)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, "event updated successfully"))
	}
}

func DeleteEvent(s *services.EventService) gin.HandlerFunc {
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
		if err := s.DeleteEvent(c.Request.Context(), id, userID, claims.IsAdmin()); err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "event deleted successfully"))
	}
}
