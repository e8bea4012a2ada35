package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecomputeRating(t *testing.T) {
	h := &Hotel{}
	h.RecomputeRating()
	if h.Analytics.AverageRating != 0 || h.Analytics.TotalReviews != 0 {
		t.Error("empty review list should zero the aggregates")
	}

	h.Reviews = []HotelReview{
		{UserID: primitive.NewObjectID(), Rating: 5},
		{UserID: primitive.NewObjectID(), Rating: 4},
		{UserID: primitive.NewObjectID(), Rating: 4},
	}
	h.RecomputeRating()
	if h.Analytics.TotalReviews != 3 {
		t.Errorf("expected 3 reviews, got %d", h.Analytics.TotalReviews)
	}
	// mean 4.333... rounds to 4.3
	if h.Analytics.AverageRating != 4.3 {
		t.Errorf("expected average 4.3, got %v", h.Analytics.AverageRating)
	}
}

func TestAddReviewOnePerUser(t *testing.T) {
	h := &Hotel{}
	userID := primitive.NewObjectID()
	now := time.Now()

	if err := h.AddReview(HotelReview{UserID: userID, Rating: 5, CreatedAt: now}); err != nil {
		t.Fatalf("first review rejected: %v", err)
	}
	if err := h.AddReview(HotelReview{UserID: userID, Rating: 3, CreatedAt: now}); err == nil {
		t.Error("expected second review from same user to be rejected")
	}
	if err := h.AddReview(HotelReview{UserID: primitive.NewObjectID(), Rating: 0}); err == nil {
		t.Error("expected out-of-range rating to be rejected")
	}
	if h.Analytics.TotalReviews != 1 {
		t.Errorf("expected 1 review counted, got %d", h.Analytics.TotalReviews)
	}
}

func TestUpdateAndRemoveReview(t *testing.T) {
	h := &Hotel{}
	userID := primitive.NewObjectID()
	now := time.Now()

	if err := h.UpdateReview(userID, 4, "", now); err == nil {
		t.Error("expected update of missing review to fail")
	}

	if err := h.AddReview(HotelReview{UserID: userID, Rating: 2}); err != nil {
		t.Fatalf("add review failed: %v", err)
	}
	if err := h.UpdateReview(userID, 5, "much better", now); err != nil {
		t.Fatalf("update review failed: %v", err)
	}
	if h.Reviews[0].Rating != 5 || h.Analytics.AverageRating != 5 {
		t.Errorf("review not updated: rating=%d avg=%v", h.Reviews[0].Rating, h.Analytics.AverageRating)
	}

	if err := h.RemoveReview(userID); err != nil {
		t.Fatalf("remove review failed: %v", err)
	}
	if len(h.Reviews) != 0 || h.Analytics.AverageRating != 0 {
		t.Error("review not removed or aggregates not reset")
	}
	if err := h.RemoveReview(userID); err == nil {
		t.Error("expected removing a missing review to fail")
	}
}

func TestNormalizeImagesSinglePrimary(t *testing.T) {
	h := &Hotel{}
	h.NormalizeImages() // no images, no panic

	h.Images = []HotelImage{
		{URL: "a"},
		{URL: "b"},
	}
	h.NormalizeImages()
	if !h.Images[0].IsPrimary || h.Images[1].IsPrimary {
		t.Error("first image should become primary when none is flagged")
	}

	h.Images = []HotelImage{
		{URL: "a", IsPrimary: true},
		{URL: "b", IsPrimary: true},
		{URL: "c", IsPrimary: true},
	}
	h.NormalizeImages()
	primaries := 0
	for _, img := range h.Images {
		if img.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 || !h.Images[0].IsPrimary {
		t.Errorf("expected exactly the first flagged image to stay primary, got %d primaries", primaries)
	}
}

func TestValidateHotelRooms(t *testing.T) {
	h := &Hotel{
		Name:     "Seaside",
		Location: HotelLocation{City: "Lisbon", Country: "Portugal"},
		Rooms:    HotelRooms{TotalRooms: 10, AvailableRooms: 12},
	}
	if err := h.ValidateHotel(); err == nil {
		t.Error("expected error when available rooms exceed total")
	}

	h.Rooms = HotelRooms{TotalRooms: 10, AvailableRooms: 10}
	if err := h.ValidateHotel(); err != nil {
		t.Errorf("valid hotel rejected: %v", err)
	}
}

func TestHasRoomsAvailable(t *testing.T) {
	h := &Hotel{Rooms: HotelRooms{TotalRooms: 10, AvailableRooms: 3}}
	if !h.HasRoomsAvailable(3) {
		t.Error("should have 3 rooms available")
	}
	if h.HasRoomsAvailable(4) {
		t.Error("should not have 4 rooms available")
	}
	if h.HasRoomsAvailable(0) {
		t.Error("zero rooms is not a bookable request")
	}
}
