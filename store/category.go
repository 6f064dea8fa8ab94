package store

import (
	"context"

	"github.com/lms-go/library-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func categoryNameQuery(q string) bson.M {
	if q == "" {
		return bson.M{}
	}
	return bson.M{"name": primitive.Regex{Pattern: q, Options: "i"}}
}

func (db *DB) ListCategories(ctx context.Context, q string, limit, skip int64) ([]models.Category, int64, error) {
	query := categoryNameQuery(q)
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := db.Categories().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var categories []models.Category
	if err := cur.All(ctx, &categories); err != nil {
		return nil, 0, err
	}
	total, err := db.Categories().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func (db *DB) CategoryByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	err := db.Categories().FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) CategoryByName(ctx context.Context, name string, exclude *primitive.ObjectID) (*models.Category, error) {
	query := bson.M{"name": name}
	if exclude != nil {
		query["_id"] = bson.M{"$ne": *exclude}
	}
	var c models.Category
	err := db.Categories().FindOne(ctx, query).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) InsertCategory(ctx context.Context, c *models.Category) (primitive.ObjectID, error) {
	res, err := db.Categories().InsertOne(ctx, c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UpdateCategory(ctx context.Context, id primitive.ObjectID, c *models.Category) error {
	_, err := db.Categories().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"name": c.Name}})
	return err
}

func (db *DB) DeleteCategory(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Categories().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
