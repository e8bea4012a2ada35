package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wanderbay/wanderbay-api/internal/helpers"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"github.com/wanderbay/wanderbay-api/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeCouponRepo struct {
	models.CouponRepo
	coupon *models.Coupon
}

func (f *fakeCouponRepo) GetCouponByID(_ context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	if f.coupon != nil && f.coupon.ID == id {
		return f.coupon, nil
	}
	return nil, nil
}

type fakeUserRepo struct {
	models.UserRepo
	user *models.User
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, _ primitive.ObjectID) (*models.User, error) {
	return f.user, nil
}

func TestUseCouponInvalidOrderResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := primitive.NewObjectID()
	coupon := &models.Coupon{
		ID:           primitive.NewObjectID(),
		Code:         "EXPIRED10",
		Discount:     10,
		DiscountType: models.DiscountPercentage,
		Eligibility:  models.EligibilityAll,
		StartDate:    time.Now().Add(-48 * time.Hour),
		ExpiryDate:   time.Now().Add(-24 * time.Hour),
		IsActive:     true,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewCouponService(
		&fakeCouponRepo{coupon: coupon},
		&fakeUserRepo{user: &models.User{ID: userID, TotalOrders: 3}},
		logger,
	)

	body, err := json.Marshal(map[string]interface{}{
		"package_id":   primitive.NewObjectID().Hex(),
		"order_amount": 500,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: coupon.ID.Hex()}}
	c.Set("user", &helpers.EnhancedClaims{UserID: userID.Hex(), Role: "user"})

	UseCoupon(svc)(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp models.ApiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false for an invalid coupon")
	}
	if resp.Error == nil || resp.Error.Code != "BAD_REQUEST" {
		t.Errorf("expected BAD_REQUEST error body, got %+v", resp.Error)
	}
	if resp.Data == nil {
		t.Error("expected the validation result in data")
	}
}
