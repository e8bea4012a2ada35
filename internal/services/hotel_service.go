package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/connect"
	"github.com/wanderbay/wanderbay-api/internal/helpers"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HotelService struct {
	hotels models.HotelRepo
	logger *slog.Logger
}

func NewHotelService(hotels models.HotelRepo, logger *slog.Logger) *HotelService {
	return &HotelService{hotels: hotels, logger: logger}
}

// uploadWithTimeout pushes raw image payloads to cloudinary, bailing out if
// the upload takes longer than 30 seconds.
func uploadWithTimeout(ctx context.Context, images []string, folder string) ([]string, []string, error) {
	uploadChan := make(chan struct {
		urls      []string
		publicIDs []string
	}, 1)
	errorChan := make(chan error, 1)

	go func() {
		urls, publicIDs, uploadErr := helpers.UploadImages(ctx, connect.Cld, images, folder)
		if uploadErr != nil {
			errorChan <- uploadErr
			return
		}
		uploadChan <- struct {
			urls      []string
			publicIDs []string
		}{urls, publicIDs}
	}()

	select {
	case result := <-uploadChan:
		return result.urls, result.publicIDs, nil
	case uploadErr := <-errorChan:
		return nil, nil, fmt.Errorf("failed to upload images: %v", uploadErr)
	case <-time.After(30 * time.Second):
		return nil, nil, fmt.Errorf("image upload timeout")
	}
}

func (hs *HotelService) CreateHotel(ctx context.Context, hotel *models.Hotel, imageData []string, createdBy primitive.ObjectID) (*models.Hotel, error) {
	hotel.CreatedBy = createdBy
	hotel.Slug = helpers.GenerateSlug(hotel.Name, hotel.Location.City)
	now := time.Now()
	hotel.CreatedAt = now
	hotel.UpdatedAt = now
	if err := hotel.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := hotel.ValidateHotel(); err != nil {
		return nil, err
	}

	var uploadedPublicIDs []string
	if len(imageData) > 0 {
		urls, publicIDs, err := uploadWithTimeout(ctx, imageData, helpers.HotelFolder)
		if err != nil {
			return nil, err
		}
		uploadedPublicIDs = publicIDs
		for i, url := range urls {
			hotel.Images = append(hotel.Images, models.HotelImage{URL: url, PublicID: publicIDs[i]})
		}
	}
	hotel.NormalizeImages()

	created, err := hs.hotels.CreateHotel(ctx, hotel)
	if err != nil {
		// Clean up the uploads if the insert did not go through.
		if len(uploadedPublicIDs) > 0 {
			if delErr := helpers.DeleteImages(ctx, connect.Cld, uploadedPublicIDs); delErr != nil {
				hs.logger.Error("orphaned image cleanup failed", "error", delErr)
			}
		}
		return nil, err
	}
	return created, nil
}

func (hs *HotelService) GetHotel(ctx context.Context, id primitive.ObjectID) (*models.Hotel, error) {
	hotel, err := hs.hotels.GetHotelByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hotel == nil {
		return nil, apperr.NotFound("hotel not found")
	}
	return hotel, nil
}

func (hs *HotelService) ListHotels(ctx context.Context, search string, opts models.ListOptions) ([]*models.Hotel, int64, error) {
	if opts.Limit <= 0 {
		return nil, 0, apperr.BadRequest("invalid limit")
	}
	return hs.hotels.ListHotels(ctx, search, opts)
}

// UpdateHotel applies a partial update on top of the stored document. New
// image payloads are appended; images the caller dropped are removed from
// cloudinary best-effort.
func (hs *HotelService) UpdateHotel(ctx context.Context, id primitive.ObjectID, update *models.Hotel, imageData []string) (*models.Hotel, error) {
	hotel, err := hs.GetHotel(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		hotel.Name = update.Name
		hotel.Slug = helpers.GenerateSlug(update.Name, hotel.Location.City)
	}
	if update.Description != "" {
		hotel.Description = update.Description
	}
	if update.Location.City != "" {
		hotel.Location = update.Location
	}
	if update.Contact != (models.HotelContact{}) {
		hotel.Contact = update.Contact
	}
	if update.Amenities != nil {
		hotel.Amenities = update.Amenities
	}
	if update.PricePerNight > 0 {
		hotel.PricePerNight = update.PricePerNight
	}
	if update.Rooms.TotalRooms > 0 {
		hotel.Rooms = update.Rooms
	}
	if update.Status != "" {
		hotel.Status = update.Status
	}

	if len(imageData) > 0 {
		urls, publicIDs, err := uploadWithTimeout(ctx, imageData, helpers.HotelFolder)
		if err != nil {
			return nil, err
		}
		for i, url := range urls {
			hotel.Images = append(hotel.Images, models.HotelImage{URL: url, PublicID: publicIDs[i]})
		}
	}
	hotel.NormalizeImages()
	hotel.UpdatedAt = time.Now()

	if err := hotel.ValidateHotel(); err != nil {
		return nil, err
	}
	if err := hs.hotels.ReplaceHotel(ctx, hotel); err != nil {
		return nil, err
	}
	return hotel, nil
}

func (hs *HotelService) DeleteHotel(ctx context.Context, id primitive.ObjectID) error {
	hotel, err := hs.GetHotel(ctx, id)
	if err != nil {
		return err
	}
	if err := hs.hotels.DeleteHotel(ctx, id); err != nil {
		return err
	}
	if len(hotel.Images) > 0 {
		publicIDs := make([]string, 0, len(hotel.Images))
		for _, img := range hotel.Images {
			if img.PublicID != "" {
				publicIDs = append(publicIDs, img.PublicID)
			}
		}
		if err := helpers.DeleteImages(ctx, connect.Cld, publicIDs); err != nil {
			hs.logger.Error("hotel image cleanup failed", "hotel_id", id.Hex(), "error", err)
		}
	}
	return nil
}

func (hs *HotelService) AddReview(ctx context.Context, hotelID, userID primitive.ObjectID, rating int, comment string) (*models.Hotel, error) {
	hotel, err := hs.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	review := models.HotelReview{
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := hotel.AddReview(review); err != nil {
		return nil, err
	}
	hotel.UpdatedAt = now
	if err := hs.hotels.ReplaceHotel(ctx, hotel); err != nil {
		return nil, err
	}
	return hotel, nil
}

func (hs *HotelService) UpdateReview(ctx context.Context, hotelID, userID primitive.ObjectID, rating int, comment string) (*models.Hotel, error) {
	hotel, err := hs.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := hotel.UpdateReview(userID, rating, comment, now); err != nil {
		return nil, err
	}
	hotel.UpdatedAt = now
	if err := hs.hotels.ReplaceHotel(ctx, hotel); err != nil {
		return nil, err
	}
	return hotel, nil
}

func (hs *HotelService) RemoveReview(ctx context.Context, hotelID, userID primitive.ObjectID) (*models.Hotel, error) {
	hotel, err := hs.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if err := hotel.RemoveReview(userID); err != nil {
		return nil, err
	}
	hotel.UpdatedAt = time.Now()
	if err := hs.hotels.ReplaceHotel(ctx, hotel); err != nil {
		return nil, err
	}
	return hotel, nil
}
