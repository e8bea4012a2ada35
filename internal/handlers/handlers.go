package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/helpers"
	"github.com/wanderbay/wanderbay-api/internal/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pathID parses the :id path parameter into an ObjectID, tolerating stray
// quotes some clients send.
func pathID(c *gin.Context, name string) (primitive.ObjectID, error) {
	raw := strings.Trim(strings.TrimSpace(c.Param(name)), "\"'")
	if raw == "" {
		return primitive.NilObjectID, apperr.BadRequest(name + " is required")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid " + name + " format")
	}
	return id, nil
}

func pathIDFromString(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid id format")
	}
	return id, nil
}

// actor resolves the authenticated caller from the request context.
func actor(c *gin.Context) (*helpers.EnhancedClaims, primitive.ObjectID, error) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil, primitive.NilObjectID, apperr.Unauthorized("unauthorized")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, primitive.NilObjectID, apperr.Unauthorized("invalid user id in token")
	}
	return claims, id, nil
}
