package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CategoryColName = "categories"

type CategoryStatus string

const (
	CategoryActive   CategoryStatus = "active"
	CategoryInactive CategoryStatus = "inactive"
)

type Category struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name" validate:"required"`
	Slug        string               `bson:"slug" json:"slug"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Parent      *primitive.ObjectID  `bson:"parent,omitempty" json:"parent,omitempty"`
	Children    []primitive.ObjectID `bson:"children,omitempty" json:"children,omitempty"`
	// PackageCount is recomputed from a live query whenever a save touches
	// status, not maintained incrementally.
	PackageCount int            `bson:"package_count" json:"package_count"`
	Status       CategoryStatus `bson:"status" json:"status"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at" json:"updated_at"`
}

func (c *Category) BeforeCreate() error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Status == "" {
		c.Status = CategoryActive
	}
	return nil
}

type CategoryRepo interface {
	EnsureCategoryIndexes(ctx context.Context) error
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*Category, error)
	ListCategories(ctx context.Context, search string, opts ListOptions) ([]*Category, int64, error)
	ReplaceCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
	AddCategoryChild(ctx context.Context, parent, child primitive.ObjectID) error
	RemoveCategoryChild(ctx context.Context, parent, child primitive.ObjectID) error
	RecountCategoryPackages(ctx context.Context, id primitive.ObjectID) (int, error)
}

func (mdb *MongodbRepo) EnsureCategoryIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, DbName, CategoryColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("slug_unique"),
		},
		{
			Keys:    bson.D{{Key: "parent", Value: 1}},
			Options: options.Index().SetName("parent_idx"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating category indexes: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) CreateCategory(ctx context.Context, category *Category) (*Category, error) {
	if err := category.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare category for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, DbName, CategoryColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("category slug already exists")
		}
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	return category, nil
}

func (mdb *MongodbRepo) GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	col, err := mdb.GetCollection(ctx, DbName, CategoryColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var category Category
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding category: %v", err)
	}
	return &category, nil
}

func (mdb *MongodbRepo) ListCategories(ctx context.Context, search string, opts ListOptions) ([]*Category, int64, error) {
	col, err := mdb.GetCollection(ctx, DbName, CategoryColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	query := bson.M{}
	if search != "" {
		query["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting categories: %v", err)
	}

	cursor, err := col.Find(ctx, query, opts.mongoFindOptions("name"))
	if err != nil {
		return nil, 0, fmt.Errorf("error finding categories: %v", err)
	}
	defer cursor.Close(ctx)

	var categories []*Category
	for cursor.Next(ctx) {
		var c Category
		if err := cursor.Decode(&c); err != nil {
			return nil, 0, fmt.Errorf("error decoding category: %v", err)
		}
		categories = append(categories, &c)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}
	return categories, total, nil
}

func (mdb *MongodbRepo) ReplaceCategory(ctx context.Context, category *Category) error {
	col, err := mdb.GetCollection(ctx, DbName, CategoryColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	category.UpdatedAt = time.Now()
	res, err := col.ReplaceOne(ctx, bson.M{"_id": category.ID}, category)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("category %s not found", category.ID.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, CategoryColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("category %s not found", id.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) AddCategoryChild(ctx context.Context, parent, child primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, CategoryColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = col.UpdateOne(ctx, bson.M{"_id": parent}, bson.M{
		"$addToSet": bson.M{"children": child},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

func (mdb *MongodbRepo) RemoveCategoryChild(ctx context.Context, parent, child primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, CategoryColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = col.UpdateOne(ctx, bson.M{"_id": parent}, bson.M{
		"$pull": bson.M{"children": child},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// RecountCategoryPackages refreshes package_count from a live count of active
// packages in the category, and stores the result.
func (mdb *MongodbRepo) RecountCategoryPackages(ctx context.Context, id primitive.ObjectID) (int, error) {
	pkgCol, err := mdb.GetCollection(ctx, DbName, PackageColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}
	count, err := pkgCol.CountDocuments(ctx, bson.M{"category_id": id, "status": PackageActive})
	if err != nil {
		return 0, fmt.Errorf("error counting packages: %v", err)
	}

	catCol, err := mdb.GetCollection(ctx, DbName, CategoryColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}
	opts := options.Update()
	_, err = catCol.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"package_count": count, "updated_at": time.Now()},
	}, opts)
	if err != nil {
		return 0, fmt.Errorf("error updating package count: %v", err)
	}
	return int(count), nil
}
