package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const PropertyColName = "properties"

// Property is a whole-unit rental (villa, apartment) booked as a single unit,
// unlike hotels which track a room pool.
type Property struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name" validate:"required"`
	Slug          string             `bson:"slug" json:"slug"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Location      HotelLocation      `bson:"location" json:"location"`
	PricePerNight float64            `bson:"price_per_night" json:"price_per_night" validate:"gte=0"`
	MaxGuests     int                `bson:"max_guests,omitempty" json:"max_guests,omitempty"`
	Images        []HotelImage       `bson:"images,omitempty" json:"images,omitempty"`
	Status        HotelStatus        `bson:"status" json:"status"`
	CreatedBy     primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

func (p *Property) BeforeCreate() error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Status == "" {
		p.Status = HotelPending
	}
	return nil
}

type PropertyRepo interface {
	CreateProperty(ctx context.Context, property *Property) (*Property, error)
	GetPropertyByID(ctx context.Context, id primitive.ObjectID) (*Property, error)
	ListProperties(ctx context.Context, search string, opts ListOptions) ([]*Property, int64, error)
	ReplaceProperty(ctx context.Context, property *Property) error
	DeleteProperty(ctx context.Context, id primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreateProperty(ctx context.Context, property *Property) (*Property, error) {
	if err := property.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare property for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, DbName, PropertyColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.InsertOne(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to insert property: %w", err)
	}
	return property, nil
}

func (mdb *MongodbRepo) GetPropertyByID(ctx context.Context, id primitive.ObjectID) (*Property, error) {
	col, err := mdb.GetCollection(ctx, DbName, PropertyColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var property Property
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding property: %v", err)
	}
	return &property, nil
}

func (mdb *MongodbRepo) ListProperties(ctx context.Context, search string, opts ListOptions) ([]*Property, int64, error) {
	col, err := mdb.GetCollection(ctx, DbName, PropertyColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	query := bson.M{}
	if search != "" {
		query["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"location.city": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting properties: %v", err)
	}

	cursor, err := col.Find(ctx, query, opts.mongoFindOptions("created_at"))
	if err != nil {
		return nil, 0, fmt.Errorf("error finding properties: %v", err)
	}
	defer cursor.Close(ctx)

	var properties []*Property
	for cursor.Next(ctx) {
		var p Property
		if err := cursor.Decode(&p); err != nil {
			return nil, 0, fmt.Errorf("error decoding property: %v", err)
		}
		properties = append(properties, &p)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}
	return properties, total, nil
}

func (mdb *MongodbRepo) ReplaceProperty(ctx context.Context, property *Property) error {
	col, err := mdb.GetCollection(ctx, DbName, PropertyColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	property.UpdatedAt = time.Now()
	res, err := col.ReplaceOne(ctx, bson.M{"_id": property.ID}, property)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("property %s not found", property.ID.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) DeleteProperty(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, PropertyColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("property %s not found", id.Hex())
	}
	return nil
}
