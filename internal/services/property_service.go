package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/connect"
	"github.com/wanderbay/wanderbay-api/internal/helpers"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyService struct {
	properties models.PropertyRepo
	logger     *slog.Logger
}

func NewPropertyService(properties models.PropertyRepo, logger *slog.Logger) *PropertyService {
	return &PropertyService{properties: properties, logger: logger}
}

func (ps *PropertyService) CreateProperty(ctx context.Context, property *models.Property, imageData []string, createdBy primitive.ObjectID) (*models.Property, error) {
	if err := models.Validate.Struct(property); err != nil {
		return nil, apperr.BadRequest("invalid property data").WithDetails(err.Error())
	}
	if err := property.BeforeCreate(); err != nil {
		return nil, err
	}
	property.CreatedBy = createdBy
	property.Slug = helpers.GenerateSlug(property.Name, property.Location.City)
	now := time.Now()
	property.CreatedAt = now
	property.UpdatedAt = now

	var uploadedPublicIDs []string
	if len(imageData) > 0 {
		urls, publicIDs, err := uploadWithTimeout(ctx, imageData, helpers.PropertyFolder)
		if err != nil {
			return nil, err
		}
		uploadedPublicIDs = publicIDs
		for i, url := range urls {
			property.Images = append(property.Images, models.HotelImage{URL: url, PublicID: publicIDs[i]})
		}
		property.Images[0].IsPrimary = true
	}

	created, err := ps.properties.CreateProperty(ctx, property)
	if err != nil {
		if len(uploadedPublicIDs) > 0 {
			if delErr := helpers.DeleteImages(ctx, connect.Cld, uploadedPublicIDs); delErr != nil {
				ps.logger.Error("orphaned image cleanup failed", "error", delErr)
			}
		}
		return nil, err
	}
	return created, nil
}

func (ps *PropertyService) GetProperty(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	property, err := ps.properties.GetPropertyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, apperr.NotFound("property not found")
	}
	return property, nil
}

func (ps *PropertyService) ListProperties(ctx context.Context, search string, opts models.ListOptions) ([]*models.Property, int64, error) {
	if opts.Limit <= 0 {
		return nil, 0, apperr.BadRequest("invalid limit")
	}
	return ps.properties.ListProperties(ctx, search, opts)
}

func (ps *PropertyService) UpdateProperty(ctx context.Context, id primitive.ObjectID, update *models.Property, imageData []string) (*models.Property, error) {
	property, err := ps.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		property.Name = update.Name
		property.Slug = helpers.GenerateSlug(update.Name, property.Location.City)
	}
	if update.Description != "" {
		property.Description = update.Description
	}
	if update.Location.City != "" {
		property.Location = update.Location
	}
	if update.PricePerNight > 0 {
		property.PricePerNight = update.PricePerNight
	}
	if update.MaxGuests > 0 {
		property.MaxGuests = update.MaxGuests
	}
	if update.Status != "" {
		property.Status = update.Status
	}

	if len(imageData) > 0 {
		urls, publicIDs, err := uploadWithTimeout(ctx, imageData, helpers.PropertyFolder)
		if err != nil {
			return nil, err
		}
		for i, url := range urls {
			property.Images = append(property.Images, models.HotelImage{URL: url, PublicID: publicIDs[i]})
		}
	}
	property.UpdatedAt = time.Now()

	if err := ps.properties.ReplaceProperty(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (ps *PropertyService) DeleteProperty(ctx context.Context, id primitive.ObjectID) error {
	property, err := ps.GetProperty(ctx, id)
	if err != nil {
		return err
	}
	if err := ps.properties.DeleteProperty(ctx, id); err != nil {
		return err
	}
	if len(property.Images) > 0 {
		publicIDs := make([]string, 0, len(property.Images))
		for _, img := range property.Images {
			if img.PublicID != "" {
				publicIDs = append(publicIDs, img.PublicID)
			}
		}
		if err := helpers.DeleteImages(ctx, connect.Cld, publicIDs); err != nil {
			ps.logger.Error("property image cleanup failed", "property_id", id.Hex(), "error", err)
		}
	}
	return nil
}
