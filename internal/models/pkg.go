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

const PackageColName = "packages"

type PackageStatus string

const (
	PackageActive   PackageStatus = "active"
	PackageInactive PackageStatus = "inactive"
	PackageDraft    PackageStatus = "draft"
)

// Package is a bookable travel package: a destination itinerary with a fixed
// duration and price, grouped under a category.
type Package struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title        string              `bson:"title" json:"title" validate:"required"`
	Slug         string              `bson:"slug" json:"slug"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Destination  string              `bson:"destination,omitempty" json:"destination,omitempty"`
	DurationDays int                 `bson:"duration_days" json:"duration_days" validate:"gte=1"`
	Price        float64             `bson:"price" json:"price" validate:"gte=0"`
	CategoryID   *primitive.ObjectID `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Images       []HotelImage        `bson:"images,omitempty" json:"images,omitempty"`
	MaxGuests    int                 `bson:"max_guests,omitempty" json:"max_guests,omitempty"`
	// TotalBookings counts bookings ever made against this package.
	TotalBookings int                `bson:"total_bookings" json:"total_bookings"`
	Status        PackageStatus      `bson:"status" json:"status"`
	CreatedBy     primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

func (p *Package) BeforeCreate() error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Status == "" {
		p.Status = PackageDraft
	}
	return nil
}

type PackageRepo interface {
	EnsurePackageIndexes(ctx context.Context) error
	CreatePackage(ctx context.Context, pkg *Package) (*Package, error)
	GetPackageByID(ctx context.Context, id primitive.ObjectID) (*Package, error)
	ListPackages(ctx context.Context, search string, opts ListOptions) ([]*Package, int64, error)
	ReplacePackage(ctx context.Context, pkg *Package) error
	DeletePackage(ctx context.Context, id primitive.ObjectID) error
	IncrementPackageBookings(ctx context.Context, id primitive.ObjectID) error
}

func (mdb *MongodbRepo) EnsurePackageIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, DbName, PackageColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("slug_unique"),
		},
		{
			Keys:    bson.D{{Key: "category_id", Value: 1}},
			Options: options.Index().SetName("category_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_idx"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating package indexes: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) CreatePackage(ctx context.Context, pkg *Package) (*Package, error) {
	if err := pkg.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare package for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, DbName, PackageColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.InsertOne(ctx, pkg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("package slug already exists")
		}
		return nil, fmt.Errorf("failed to insert package: %w", err)
	}
	return pkg, nil
}

func (mdb *MongodbRepo) GetPackageByID(ctx context.Context, id primitive.ObjectID) (*Package, error) {
	col, err := mdb.GetCollection(ctx, DbName, PackageColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var pkg Package
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&pkg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding package: %v", err)
	}
	return &pkg, nil
}

func (mdb *MongodbRepo) ListPackages(ctx context.Context, search string, opts ListOptions) ([]*Package, int64, error) {
	col, err := mdb.GetCollection(ctx, DbName, PackageColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	query := bson.M{}
	if search != "" {
		query["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"destination": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting packages: %v", err)
	}

	cursor, err := col.Find(ctx, query, opts.mongoFindOptions("created_at"))
	if err != nil {
		return nil, 0, fmt.Errorf("error finding packages: %v", err)
	}
	defer cursor.Close(ctx)

	var packages []*Package
	for cursor.Next(ctx) {
		var p Package
		if err := cursor.Decode(&p); err != nil {
			return nil, 0, fmt.Errorf("error decoding package: %v", err)
		}
		packages = append(packages, &p)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}
	return packages, total, nil
}

func (mdb *MongodbRepo) ReplacePackage(ctx context.Context, pkg *Package) error {
	col, err := mdb.GetCollection(ctx, DbName, PackageColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	pkg.UpdatedAt = time.Now()
	res, err := col.ReplaceOne(ctx, bson.M{"_id": pkg.ID}, pkg)
	if err != nil {
		return fmt.Errorf("failed to update package: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("package %s not found", pkg.ID.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) DeletePackage(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, PackageColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("package %s not found", id.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) IncrementPackageBookings(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, PackageColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"total_bookings": 1},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return err
}
