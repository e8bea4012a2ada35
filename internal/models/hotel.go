package models

import (
	"fmt"
	"math"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HotelStatus string

const (
	HotelPending  HotelStatus = "pending"
	HotelActive   HotelStatus = "active"
	HotelInactive HotelStatus = "inactive"
)

type HotelRooms struct {
	TotalRooms     int `bson:"total_rooms" json:"total_rooms"`
	AvailableRooms int `bson:"available_rooms" json:"available_rooms"`
}

type HotelImage struct {
	URL       string `bson:"url" json:"url"`
	PublicID  string `bson:"public_id" json:"public_id"`
	IsPrimary bool   `bson:"is_primary" json:"is_primary"`
}

type HotelReview struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Rating    int                `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type HotelAnalytics struct {
	AverageRating float64 `bson:"average_rating" json:"average_rating"`
	TotalReviews  int     `bson:"total_reviews" json:"total_reviews"`
	TotalBookings int     `bson:"total_bookings" json:"total_bookings"`
}

type HotelContact struct {
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email   string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Website string `bson:"website,omitempty" json:"website,omitempty"`
}

type HotelLocation struct {
	Address string  `bson:"address,omitempty" json:"address,omitempty"`
	City    string  `bson:"city" json:"city" validate:"required"`
	Country string  `bson:"country" json:"country" validate:"required"`
	Lat     float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng     float64 `bson:"lng,omitempty" json:"lng,omitempty"`
}

type Hotel struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name" validate:"required"`
	Slug          string             `bson:"slug" json:"slug"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Location      HotelLocation      `bson:"location" json:"location"`
	Contact       HotelContact       `bson:"contact" json:"contact"`
	Amenities     []string           `bson:"amenities,omitempty" json:"amenities,omitempty"`
	PricePerNight float64            `bson:"price_per_night" json:"price_per_night" validate:"gte=0"`

	Rooms     HotelRooms     `bson:"rooms" json:"rooms"`
	Images    []HotelImage   `bson:"images,omitempty" json:"images,omitempty"`
	Reviews   []HotelReview  `bson:"reviews" json:"reviews"`
	Analytics HotelAnalytics `bson:"analytics" json:"analytics"`

	Status     HotelStatus         `bson:"status" json:"status"`
	CreatedBy  primitive.ObjectID  `bson:"created_by" json:"created_by"`
	VerifiedBy *primitive.ObjectID `bson:"verified_by,omitempty" json:"verified_by,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updated_at"`
}

func (h *Hotel) BeforeCreate() error {
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	if h.Status == "" {
		h.Status = HotelPending
	}
	return nil
}

func (h *Hotel) ValidateHotel() error {
	if err := Validate.Struct(h); err != nil {
		return apperr.BadRequest("invalid hotel data").WithDetails(err.Error())
	}
	if h.Rooms.TotalRooms < 0 || h.Rooms.AvailableRooms < 0 {
		return apperr.BadRequest("room counts cannot be negative")
	}
	if h.Rooms.AvailableRooms > h.Rooms.TotalRooms {
		return apperr.BadRequest("available_rooms cannot exceed total_rooms")
	}
	return nil
}

// NormalizeImages keeps the single-primary invariant: the first image flagged
// primary wins, and if none is flagged the first image becomes primary.
func (h *Hotel) NormalizeImages() {
	if len(h.Images) == 0 {
		return
	}
	primary := -1
	for i := range h.Images {
		if h.Images[i].IsPrimary {
			if primary == -1 {
				primary = i
			} else {
				h.Images[i].IsPrimary = false
			}
		}
	}
	if primary == -1 {
		h.Images[0].IsPrimary = true
	}
}

// RecomputeRating refreshes the review aggregates; it runs on every save that
// touches reviews. The average is the mean rounded to one decimal.
func (h *Hotel) RecomputeRating() {
	h.Analytics.TotalReviews = len(h.Reviews)
	if len(h.Reviews) == 0 {
		h.Analytics.AverageRating = 0
		return
	}
	sum := 0
	for _, r := range h.Reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(h.Reviews))
	h.Analytics.AverageRating = math.Round(mean*10) / 10
}

func (h *Hotel) findReview(userID primitive.ObjectID) int {
	for i := range h.Reviews {
		if h.Reviews[i].UserID == userID {
			return i
		}
	}
	return -1
}

// AddReview appends a review, enforcing one review per user.
func (h *Hotel) AddReview(review HotelReview) error {
	if review.Rating < 1 || review.Rating > 5 {
		return apperr.BadRequest("rating must be between 1 and 5")
	}
	if h.findReview(review.UserID) != -1 {
		return apperr.Conflict("user has already reviewed this hotel")
	}
	h.Reviews = append(h.Reviews, review)
	h.RecomputeRating()
	return nil
}

func (h *Hotel) UpdateReview(userID primitive.ObjectID, rating int, comment string, now time.Time) error {
	if rating < 1 || rating > 5 {
		return apperr.BadRequest("rating must be between 1 and 5")
	}
	i := h.findReview(userID)
	if i == -1 {
		return apperr.NotFound("review not found for this user")
	}
	h.Reviews[i].Rating = rating
	h.Reviews[i].Comment = comment
	h.Reviews[i].UpdatedAt = now
	h.RecomputeRating()
	return nil
}

func (h *Hotel) RemoveReview(userID primitive.ObjectID) error {
	i := h.findReview(userID)
	if i == -1 {
		return apperr.NotFound("review not found for this user")
	}
	h.Reviews = append(h.Reviews[:i], h.Reviews[i+1:]...)
	h.RecomputeRating()
	return nil
}

// HasRoomsAvailable reports whether n rooms can be booked right now. The
// authoritative check happens in the repository's guarded decrement; this is
// the fast pre-check used to shape the 400 response.
func (h *Hotel) HasRoomsAvailable(n int) bool {
	return n > 0 && h.Rooms.AvailableRooms >= n
}

func (h *Hotel) String() string {
	return fmt.Sprintf("%s (%s, %s)", h.Name, h.Location.City, h.Location.Country)
}
