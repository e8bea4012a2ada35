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

type packagePayload struct {
	models.Package
	ImageData []string `json:"image_data,omitempty"`
}

func CreatePackage(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, err := actor(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var payload packagePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		pkg, err := p.CreatePackage(c.Request.Context(), &payload.Package, payload.ImageData, userID)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(pkg, "package created successfully"))
	}
}

func GetPackage(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		pkg, err := p.GetPackage(c.Request.Context(), id)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(pkg, ""))
	}
}

func ListPackages(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := helpers.ParseListOptions(c)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		packages, total, err := p.ListPackages(c.Request.Context(), c.Query("search"), opts)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(packages, opts.Page, opts.Limit, total))
	}
}

func UpdatePackage(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		var payload packagePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}
		pkg, err := p.UpdatePackage(c.Request.Context(), id, &payload.Package, payload.ImageData)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(pkg, "package updated successfully"))
	}
}

func DeletePackage(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		if err := p.DeletePackage(c.Request.Context(), id); err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "package deleted successfully"))
	}
}
