package store

import (
	"context"

	"github.com/lms-go/library-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) ListAlmirahs(ctx context.Context, q string, limit, skip int64) ([]models.Almirah, int64, error) {
	query := bson.M{}
	if q != "" {
		query = bson.M{"number": primitive.Regex{Pattern: q, Options: "i"}}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := db.Almirahs().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var almirahs []models.Almirah
	if err := cur.All(ctx, &almirahs); err != nil {
		return nil, 0, err
	}
	total, err := db.Almirahs().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return almirahs, total, nil
}

func (db *DB) AlmirahByID(ctx context.Context, id primitive.ObjectID) (*models.Almirah, error) {
	var a models.Almirah
	err := db.Almirahs().FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (db *DB) InsertAlmirah(ctx context.Context, a *models.Almirah) (primitive.ObjectID, error) {
	res, err := db.Almirahs().InsertOne(ctx, a)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UpdateAlmirah(ctx context.Context, id primitive.ObjectID, a *models.Almirah) error {
	update := bson.M{
		"number":   a.Number,
		"subject":  a.Subject,
		"capacity": a.Capacity,
	}
	_, err := db.Almirahs().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (db *DB) DeleteAlmirah(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Almirahs().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
