package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListOptions carries the pagination and sorting query parameters shared by
// every list endpoint.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // asc or desc
}

func (o ListOptions) Offset() int {
	page := o.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * o.Limit
}

func (o ListOptions) mongoFindOptions(defaultSort string) *options.FindOptions {
	sortField := o.SortBy
	if sortField == "" {
		sortField = defaultSort
	}
	order := -1
	if o.SortOrder == "asc" {
		order = 1
	}
	return options.Find().
		SetSkip(int64(o.Offset())).
		SetLimit(int64(o.Limit)).
		SetSort(bson.D{{Key: sortField, Value: order}})
}
