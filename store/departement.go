package store

import (
	"context"

	"github.com/lms-go/library-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) ListDepartements(ctx context.Context, q string, limit, skip int64) ([]models.Departement, int64, error) {
	query := categoryNameQuery(q)
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := db.Departements().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var depts []models.Departement
	if err := cur.All(ctx, &depts); err != nil {
		return nil, 0, err
	}
	total, err := db.Departements().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return depts, total, nil
}

// AllDepartements returns every departement; the admin UI fills its
// dropdowns from this alongside the student list.
func (db *DB) AllDepartements(ctx context.Context) ([]models.Departement, error) {
	cur, err := db.Departements().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var depts []models.Departement
	if err := cur.All(ctx, &depts); err != nil {
		return nil, err
	}
	return depts, nil
}

// FirstDepartement returns the first departement on record, or (nil, nil)
// when the collection is empty.
func (db *DB) FirstDepartement(ctx context.Context) (*models.Departement, error) {
	var d models.Departement
	err := db.Departements().FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (db *DB) DepartementByID(ctx context.Context, id primitive.ObjectID) (*models.Departement, error) {
	var d models.Departement
	err := db.Departements().FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (db *DB) DepartementByName(ctx context.Context, name string, exclude *primitive.ObjectID) (*models.Departement, error) {
	query := bson.M{"name": name}
	if exclude != nil {
		query["_id"] = bson.M{"$ne": *exclude}
	}
	var d models.Departement
	err := db.Departements().FindOne(ctx, query).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (db *DB) InsertDepartement(ctx context.Context, d *models.Departement) (primitive.ObjectID, error) {
	res, err := db.Departements().InsertOne(ctx, d)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UpdateDepartement(ctx context.Context, id primitive.ObjectID, d *models.Departement) error {
	update := bson.M{"name": d.Name, "hod": d.HOD}
	_, err := db.Departements().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (db *DB) DeleteDepartement(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Departements().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
