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

type PackageService struct {
	packages   models.PackageRepo
	categories models.CategoryRepo
	logger     *slog.Logger
}

func NewPackageService(packages models.PackageRepo, categories models.CategoryRepo, logger *slog.Logger) *PackageService {
	return &PackageService{packages: packages, categories: categories, logger: logger}
}

func (ps *PackageService) CreatePackage(ctx context.Context, pkg *models.Package, imageData []string, createdBy primitive.ObjectID) (*models.Package, error) {
	if err := models.Validate.Struct(pkg); err != nil {
		return nil, apperr.BadRequest("invalid package data").WithDetails(err.Error())
	}
	if err := pkg.BeforeCreate(); err != nil {
		return nil, err
	}
	if pkg.CategoryID != nil {
		category, err := ps.categories.GetCategoryByID(ctx, *pkg.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperr.NotFound("category not found")
		}
	}

	pkg.CreatedBy = createdBy
	pkg.Slug = helpers.GenerateSlug(pkg.Title, pkg.Destination)
	now := time.Now()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now

	var uploadedPublicIDs []string
	if len(imageData) > 0 {
		urls, publicIDs, err := uploadWithTimeout(ctx, imageData, helpers.PackageFolder)
		if err != nil {
			return nil, err
		}
		uploadedPublicIDs = publicIDs
		for i, url := range urls {
			pkg.Images = append(pkg.Images, models.HotelImage{URL: url, PublicID: publicIDs[i]})
		}
		if len(pkg.Images) > 0 {
			pkg.Images[0].IsPrimary = true
		}
	}

	created, err := ps.packages.CreatePackage(ctx, pkg)
	if err != nil {
		if len(uploadedPublicIDs) > 0 {
			if delErr := helpers.DeleteImages(ctx, connect.Cld, uploadedPublicIDs); delErr != nil {
				ps.logger.Error("orphaned image cleanup failed", "error", delErr)
			}
		}
		return nil, err
	}

	if created.CategoryID != nil && created.Status == models.PackageActive {
		if _, err := ps.categories.RecountCategoryPackages(ctx, *created.CategoryID); err != nil {
			ps.logger.Error("package recount failed", "category", created.CategoryID.Hex(), "error", err)
		}
	}
	return created, nil
}

func (ps *PackageService) GetPackage(ctx context.Context, id primitive.ObjectID) (*models.Package, error) {
	pkg, err := ps.packages.GetPackageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, apperr.NotFound("package not found")
	}
	return pkg, nil
}

func (ps *PackageService) ListPackages(ctx context.Context, search string, opts models.ListOptions) ([]*models.Package, int64, error) {
	if opts.Limit <= 0 {
		return nil, 0, apperr.BadRequest("invalid limit")
	}
	return ps.packages.ListPackages(ctx, search, opts)
}

func (ps *PackageService) UpdatePackage(ctx context.Context, id primitive.ObjectID, update *models.Package, imageData []string) (*models.Package, error) {
	pkg, err := ps.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	statusChanged := update.Status != "" && update.Status != pkg.Status

	if update.Title != "" {
		pkg.Title = update.Title
		pkg.Slug = helpers.GenerateSlug(update.Title, pkg.Destination)
	}
	if update.Description != "" {
		pkg.Description = update.Description
	}
	if update.Destination != "" {
		pkg.Destination = update.Destination
	}
	if update.DurationDays > 0 {
		pkg.DurationDays = update.DurationDays
	}
	if update.Price > 0 {
		pkg.Price = update.Price
	}
	if update.MaxGuests > 0 {
		pkg.MaxGuests = update.MaxGuests
	}
	if update.Status != "" {
		pkg.Status = update.Status
	}
	if update.CategoryID != nil {
		category, err := ps.categories.GetCategoryByID(ctx, *update.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperr.NotFound("category not found")
		}
		pkg.CategoryID = update.CategoryID
	}

	if len(imageData) > 0 {
		urls, publicIDs, err := uploadWithTimeout(ctx, imageData, helpers.PackageFolder)
		if err != nil {
			return nil, err
		}
		for i, url := range urls {
			pkg.Images = append(pkg.Images, models.HotelImage{URL: url, PublicID: publicIDs[i]})
		}
	}
	pkg.UpdatedAt = time.Now()

	if err := ps.packages.ReplacePackage(ctx, pkg); err != nil {
		return nil, err
	}

	// A status flip changes whether the package counts toward its category.
	if statusChanged && pkg.CategoryID != nil {
		if _, err := ps.categories.RecountCategoryPackages(ctx, *pkg.CategoryID); err != nil {
			ps.logger.Error("package recount failed", "category", pkg.CategoryID.Hex(), "error", err)
		}
	}
	return pkg, nil
}

func (ps *PackageService) DeletePackage(ctx context.Context, id primitive.ObjectID) error {
	pkg, err := ps.GetPackage(ctx, id)
	if err != nil {
		return err
	}
	if err := ps.packages.DeletePackage(ctx, id); err != nil {
		return err
	}
	if len(pkg.Images) > 0 {
		publicIDs := make([]string, 0, len(pkg.Images))
		for _, img := range pkg.Images {
			if img.PublicID != "" {
				publicIDs = append(publicIDs, img.PublicID)
			}
		}
		if err := helpers.DeleteImages(ctx, connect.Cld, publicIDs); err != nil {
			ps.logger.Error("package image cleanup failed", "package_id", id.Hex(), "error", err)
		}
	}
	if pkg.CategoryID != nil {
		if _, err := ps.categories.RecountCategoryPackages(ctx, *pkg.CategoryID); err != nil {
			ps.logger.Error("package recount failed", "category", pkg.CategoryID.Hex(), "error", err)
		}
	}
	return nil
}
