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

func CreateCategory(s *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		if err := c.ShouldBindJSON(&category); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		created, err := s.CreateCategory(c.Request.Context(), &category)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "category created successfully"))
	}
}

func GetCategory(s *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		category, err := s.GetCategory(c.Request.Context(), id)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(category, ""))
	}
}

func ListCategories(s *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := helpers.ParseListOptions(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		categories, total, err := s.ListCategories(c.Request.Context(), c.Query("search"), opts)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(categories, opts.Page, opts.Limit, total))
	}
}

func UpdateCategory(s *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var update models.Category
		if err := c.ShouldBindJSON(&update); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		category, err := s.UpdateCategory(c.Request.Context(), id, &update)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(category, "category updated successfully"))
	}
}

func DeleteCategory(s *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		if err := s.DeleteCategory(c.Request.Context(), id); err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "category deleted successfully"))
	}
}
