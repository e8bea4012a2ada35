package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/helpers"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryService struct {
	categories models.CategoryRepo
	logger     *slog.Logger
}

func NewCategoryService(categories models.CategoryRepo, logger *slog.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// CreateCategory inserts a category and, when a parent is given, links the
// new id into the parent's children list.
func (cs *CategoryService) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := models.Validate.Struct(category); err != nil {
		return nil, apperr.BadRequest("invalid category data").WithDetails(err.Error())
	}
	if err := category.BeforeCreate(); err != nil {
		return nil, err
	}
	category.Slug = helpers.GenerateSlug(category.Name)
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	if category.Parent != nil {
		parent, err := cs.categories.GetCategoryByID(ctx, *category.Parent)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.NotFound("parent category not found")
		}
	}

	created, err := cs.categories.CreateCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if created.Parent != nil {
		if err := cs.categories.AddCategoryChild(ctx, *created.Parent, created.ID); err != nil {
			cs.logger.Error("linking child category failed", "parent", created.Parent.Hex(), "child", created.ID.Hex(), "error", err)
		}
	}
	return created, nil
}

func (cs *CategoryService) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	category, err := cs.categories.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.NotFound("category not found")
	}
	return category, nil
}

func (cs *CategoryService) ListCategories(ctx context.Context, search string, opts models.ListOptions) ([]*models.Category, int64, error) {
	if opts.Limit <= 0 {
		return nil, 0, apperr.BadRequest("invalid limit")
	}
	return cs.categories.ListCategories(ctx, search, opts)
}

// UpdateCategory applies a partial update. A status change refreshes the
// package count from a live query, and a parent change rewires both the old
// and new parents' children lists.
func (cs *CategoryService) UpdateCategory(ctx context.Context, id primitive.ObjectID, update *models.Category) (*models.Category, error) {
	category, err := cs.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	oldParent := category.Parent
	statusChanged := update.Status != "" && update.Status != category.Status

	if update.Name != "" {
		category.Name = update.Name
		category.Slug = helpers.GenerateSlug(update.Name)
	}
	if update.Description != "" {
		category.Description = update.Description
	}
	if update.Status != "" {
		category.Status = update.Status
	}
	if update.Parent != nil {
		if *update.Parent == id {
			return nil, apperr.BadRequest("category cannot be its own parent")
		}
		parent, err := cs.categories.GetCategoryByID(ctx, *update.Parent)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.NotFound("parent category not found")
		}
		category.Parent = update.Parent
	}
	category.UpdatedAt = time.Now()

	if statusChanged {
		count, err := cs.categories.RecountCategoryPackages(ctx, id)
		if err != nil {
			cs.logger.Error("package recount failed", "category", id.Hex(), "error", err)
		} else {
			category.PackageCount = count
		}
	}

	if err := cs.categories.ReplaceCategory(ctx, category); err != nil {
		return nil, err
	}

	if update.Parent != nil && (oldParent == nil || *oldParent != *update.Parent) {
		if oldParent != nil {
			if err := cs.categories.RemoveCategoryChild(ctx, *oldParent, id); err != nil {
				cs.logger.Error("unlinking child category failed", "parent", oldParent.Hex(), "child", id.Hex(), "error", err)
			}
		}
		if err := cs.categories.AddCategoryChild(ctx, *update.Parent, id); err != nil {
			cs.logger.Error("linking child category failed", "parent", update.Parent.Hex(), "child", id.Hex(), "error", err)
		}
	}
	return category, nil
}

// DeleteCategory refuses to remove a category that still has children.
func (cs *CategoryService) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	category, err := cs.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if len(category.Children) > 0 {
		return apperr.Conflict("category still has child categories")
	}
	if err := cs.categories.DeleteCategory(ctx, id); err != nil {
		return err
	}
	if category.Parent != nil {
		if err := cs.categories.RemoveCategoryChild(ctx, *category.Parent, id); err != nil {
			cs.logger.Error("unlinking child category failed", "parent", category.Parent.Hex(), "child", id.Hex(), "error", err)
		}
	}
	return nil
}
