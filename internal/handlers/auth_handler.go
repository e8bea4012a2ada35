package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/middleware"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"github.com/wanderbay/wanderbay-api/internal/services"
)

func Register(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}

		result, err := u.Register(c.Request.Context(), input)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(result, "account created successfully"))
	}
}

func Login(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			middleware.Abort(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
			return
		}

		result, err := u.Login(c.Request.Context(), input)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(result, "logged in successfully"))
	}
}
