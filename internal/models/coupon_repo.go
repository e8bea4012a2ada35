package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CouponColName = "coupons"

type CouponRepo interface {
	CreateCoupon(ctx context.Context, coupon *Coupon) (*Coupon, error)
	GetCouponByID(ctx context.Context, id primitive.ObjectID) (*Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (*Coupon, error)
	ListCoupons(ctx context.Context, search string, opts ListOptions) ([]*Coupon, int64, error)
	ReplaceCoupon(ctx context.Context, coupon *Coupon) error
	DeleteCoupon(ctx context.Context, id primitive.ObjectID) error
	RedeemCoupon(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, discountGiven float64) (*Coupon, error)
	EnsureCouponIndexes(ctx context.Context) error
}

func (mdb *MongodbRepo) EnsureCouponIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, DbName, CouponColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("code_unique"),
		},
		{
			Keys:    bson.D{{Key: "expiry_date", Value: 1}},
			Options: options.Index().SetName("expiry_idx"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating coupon indexes: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) CreateCoupon(ctx context.Context, coupon *Coupon) (*Coupon, error) {
	if err := coupon.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare coupon for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, DbName, CouponColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.InsertOne(ctx, coupon); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("coupon code already exists")
		}
		return nil, fmt.Errorf("failed to insert coupon: %w", err)
	}
	return coupon, nil
}

func (mdb *MongodbRepo) GetCouponByID(ctx context.Context, id primitive.ObjectID) (*Coupon, error) {
	col, err := mdb.GetCollection(ctx, DbName, CouponColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var coupon Coupon
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&coupon)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding coupon: %v", err)
	}
	return &coupon, nil
}

func (mdb *MongodbRepo) GetCouponByCode(ctx context.Context, code string) (*Coupon, error) {
	col, err := mdb.GetCollection(ctx, DbName, CouponColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var coupon Coupon
	err = col.FindOne(ctx, bson.M{"code": strings.ToUpper(strings.TrimSpace(code))}).Decode(&coupon)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding coupon: %v", err)
	}
	return &coupon, nil
}

func (mdb *MongodbRepo) ListCoupons(ctx context.Context, search string, opts ListOptions) ([]*Coupon, int64, error) {
	col, err := mdb.GetCollection(ctx, DbName, CouponColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	query := bson.M{}
	if search != "" {
		query["code"] = bson.M{"$regex": search, "$options": "i"}
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting coupons: %v", err)
	}

	cursor, err := col.Find(ctx, query, opts.mongoFindOptions("created_at"))
	if err != nil {
		return nil, 0, fmt.Errorf("error finding coupons: %v", err)
	}
	defer cursor.Close(ctx)

	var coupons []*Coupon
	for cursor.Next(ctx) {
		var c Coupon
		if err := cursor.Decode(&c); err != nil {
			return nil, 0, fmt.Errorf("error decoding coupon: %v", err)
		}
		coupons = append(coupons, &c)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}
	return coupons, total, nil
}

func (mdb *MongodbRepo) ReplaceCoupon(ctx context.Context, coupon *Coupon) error {
	col, err := mdb.GetCollection(ctx, DbName, CouponColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	coupon.UpdatedAt = time.Now()
	res, err := col.ReplaceOne(ctx, bson.M{"_id": coupon.ID}, coupon)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("coupon %s not found", coupon.ID.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) DeleteCoupon(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, CouponColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("coupon %s not found", id.Hex())
	}
	return nil
}

// RedeemCoupon increments the usage counter and analytics in one guarded
// update. The filter re-checks active/window/headroom so two concurrent
// redemptions cannot push used_count past the limit; a miss means the coupon
// stopped being redeemable between validation and use.
func (mdb *MongodbRepo) RedeemCoupon(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, discountGiven float64) (*Coupon, error) {
	col, err := mdb.GetCollection(ctx, DbName, CouponColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	filter := bson.M{
		"_id":        id,
		"is_active":  true,
		"start_date": bson.M{"$lte": now},
		"expiry_date": bson.M{"$gte": now},
		"$or": []bson.M{
			{"usage_limit": bson.M{"$lte": 0}},
			{"$expr": bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{
			"used_count":                     1,
			"analytics.total_redemptions":    1,
			"analytics.total_discount_given": discountGiven,
		},
		"$set": bson.M{
			"analytics.last_used_at": now,
			"analytics.last_used_by": userID.Hex(),
			"updated_at":             now,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Coupon
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.BadRequest("coupon is no longer redeemable")
	}
	if err != nil {
		return nil, fmt.Errorf("error redeeming coupon: %v", err)
	}
	return &updated, nil
}
