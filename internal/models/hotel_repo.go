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

const HotelColName = "hotels"

type HotelRepo interface {
	CreateHotel(ctx context.Context, hotel *Hotel) (*Hotel, error)
	GetHotelByID(ctx context.Context, id primitive.ObjectID) (*Hotel, error)
	ListHotels(ctx context.Context, search string, opts ListOptions) ([]*Hotel, int64, error)
	ReplaceHotel(ctx context.Context, hotel *Hotel) error
	DeleteHotel(ctx context.Context, id primitive.ObjectID) error
	DecrementRooms(ctx context.Context, id primitive.ObjectID, n int) error
	RestoreRooms(ctx context.Context, id primitive.ObjectID, n int) error
	EnsureHotelIndexes(ctx context.Context) error
}

func (mdb *MongodbRepo) EnsureHotelIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, DbName, HotelColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("slug_unique"),
		},
		{
			Keys: bson.D{
				{Key: "location.city", Value: 1},
				{Key: "location.country", Value: 1},
			},
			Options: options.Index().SetName("location_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_idx"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating hotel indexes: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) CreateHotel(ctx context.Context, hotel *Hotel) (*Hotel, error) {
	if err := hotel.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare hotel for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, DbName, HotelColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.InsertOne(ctx, hotel); err != nil {
		return nil, fmt.Errorf("failed to insert hotel: %w", err)
	}
	return hotel, nil
}

func (mdb *MongodbRepo) GetHotelByID(ctx context.Context, id primitive.ObjectID) (*Hotel, error) {
	col, err := mdb.GetCollection(ctx, DbName, HotelColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var hotel Hotel
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&hotel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding hotel: %v", err)
	}
	return &hotel, nil
}

func (mdb *MongodbRepo) ListHotels(ctx context.Context, search string, opts ListOptions) ([]*Hotel, int64, error) {
	col, err := mdb.GetCollection(ctx, DbName, HotelColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	query := bson.M{}
	if search != "" {
		query["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"location.city": bson.M{"$regex": search, "$options": "i"}},
			{"location.country": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting hotels: %v", err)
	}

	cursor, err := col.Find(ctx, query, opts.mongoFindOptions("created_at"))
	if err != nil {
		return nil, 0, fmt.Errorf("error finding hotels: %v", err)
	}
	defer cursor.Close(ctx)

	var hotels []*Hotel
	for cursor.Next(ctx) {
		var h Hotel
		if err := cursor.Decode(&h); err != nil {
			return nil, 0, fmt.Errorf("error decoding hotel: %v", err)
		}
		hotels = append(hotels, &h)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}
	return hotels, total, nil
}

func (mdb *MongodbRepo) ReplaceHotel(ctx context.Context, hotel *Hotel) error {
	col, err := mdb.GetCollection(ctx, DbName, HotelColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	hotel.UpdatedAt = time.Now()
	res, err := col.ReplaceOne(ctx, bson.M{"_id": hotel.ID}, hotel)
	if err != nil {
		return fmt.Errorf("failed to update hotel: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("hotel %s not found", hotel.ID.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) DeleteHotel(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, HotelColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete hotel: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("hotel %s not found", id.Hex())
	}
	return nil
}

// DecrementRooms takes n rooms out of the available pool. The filter requires
// enough headroom, so two concurrent bookings cannot race past capacity; a
// miss means either the hotel is gone or the rooms are.
func (mdb *MongodbRepo) DecrementRooms(ctx context.Context, id primitive.ObjectID, n int) error {
	if n < 1 {
		return apperr.BadRequest("room count must be at least 1")
	}
	col, err := mdb.GetCollection(ctx, DbName, HotelColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"_id":                   id,
		"rooms.available_rooms": bson.M{"$gte": n},
	}
	update := bson.M{
		"$inc": bson.M{"rooms.available_rooms": -n},
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement rooms: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.BadRequest("not enough rooms available")
	}
	return nil
}

// RestoreRooms returns n rooms to the pool. The $expr guard keeps the pool
// from exceeding total_rooms if a restore ever runs twice; a miss is surfaced
// as a conflict rather than clamped silently.
func (mdb *MongodbRepo) RestoreRooms(ctx context.Context, id primitive.ObjectID, n int) error {
	if n < 1 {
		return apperr.BadRequest("room count must be at least 1")
	}
	col, err := mdb.GetCollection(ctx, DbName, HotelColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"_id": id,
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$rooms.available_rooms", n}},
				"$rooms.total_rooms",
			},
		},
	}
	update := bson.M{
		"$inc": bson.M{"rooms.available_rooms": n},
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to restore rooms: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.Conflict("room restore would exceed total rooms")
	}
	return nil
}
