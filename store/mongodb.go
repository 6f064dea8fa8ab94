package store

import (
	"context"
	"log"
	"time"

	"github.com/lms-go/library-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Println("Connected to MongoDB")
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Books() *mongo.Collection {
	return db.Database.Collection("books")
}

func (db *DB) Categories() *mongo.Collection {
	return db.Database.Collection("categories")
}

func (db *DB) Almirahs() *mongo.Collection {
	return db.Database.Collection("almirahs")
}

func (db *DB) Departements() *mongo.Collection {
	return db.Database.Collection("departements")
}

func (db *DB) Batches() *mongo.Collection {
	return db.Database.Collection("batches")
}

// EnsureIndexes creates the unique indexes backing the API's uniqueness
// guarantees. The handlers pre-check before inserting, but two concurrent
// creates can both pass the pre-check; the index is what actually decides,
// and IsDuplicateKey remaps that loss to the alreadyExist error kind.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		{
			Keys: bson.D{{Key: "rollNumber", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"role": models.RoleStudent}),
		},
	})
	if err != nil {
		return err
	}
	if _, err := db.Books().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ISBN", Value: 1}}, Options: unique,
	}); err != nil {
		return err
	}
	for _, coll := range []*mongo.Collection{db.Categories(), db.Departements(), db.Batches()} {
		if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "name", Value: 1}}, Options: unique,
		}); err != nil {
			return err
		}
	}
	return nil
}

// IsDuplicateKey reports whether err is a unique-index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
