package store

import (
	"context"

	"github.com/lms-go/library-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) ListBatches(ctx context.Context, q string, limit, skip int64) ([]models.Batch, int64, error) {
	query := categoryNameQuery(q)
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := db.Batches().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var batches []models.Batch
	if err := cur.All(ctx, &batches); err != nil {
		return nil, 0, err
	}
	total, err := db.Batches().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

func (db *DB) AllBatches(ctx context.Context) ([]models.Batch, error) {
	cur, err := db.Batches().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var batches []models.Batch
	if err := cur.All(ctx, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// FirstBatch returns the first batch on record, or (nil, nil) when the
// collection is empty.
func (db *DB) FirstBatch(ctx context.Context) (*models.Batch, error) {
	var b models.Batch
	err := db.Batches().FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) BatchByID(ctx context.Context, id primitive.ObjectID) (*models.Batch, error) {
	var b models.Batch
	err := db.Batches().FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) BatchByName(ctx context.Context, name string, exclude *primitive.ObjectID) (*models.Batch, error) {
	query := bson.M{"name": name}
	if exclude != nil {
		query["_id"] = bson.M{"$ne": *exclude}
	}
	var b models.Batch
	err := db.Batches().FindOne(ctx, query).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) InsertBatch(ctx context.Context, b *models.Batch) (primitive.ObjectID, error) {
	res, err := db.Batches().InsertOne(ctx, b)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UpdateBatch(ctx context.Context, id primitive.ObjectID, b *models.Batch) error {
	_, err := db.Batches().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"name": b.Name}})
	return err
}

func (db *DB) DeleteBatch(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Batches().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
