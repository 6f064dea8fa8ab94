package store

import (
	"context"

	"github.com/lms-go/library-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookFilter carries the list-endpoint search parameters. ISBN and Title
// match case-insensitive substrings; Category, Almirah and Status are exact
// and only applied when set.
type BookFilter struct {
	ISBN     string
	Title    string
	Status   string
	Category *primitive.ObjectID
	Almirah  *primitive.ObjectID
}

func (f BookFilter) query() bson.M {
	and := []bson.M{
		{"ISBN": primitive.Regex{Pattern: f.ISBN, Options: "i"}},
		{"title": primitive.Regex{Pattern: f.Title, Options: "i"}},
		{"isDeleted": false},
	}
	if f.Category != nil {
		and = append(and, bson.M{"category": *f.Category})
	}
	if f.Almirah != nil {
		and = append(and, bson.M{"almirah": *f.Almirah})
	}
	if f.Status != "" {
		and = append(and, bson.M{"status": f.Status})
	}
	return bson.M{"$and": and}
}

// ListBooks returns one page of non-deleted books, newest update first, with
// category and almirah expanded. The _id tiebreak keeps pages stable when
// updatedAt values collide.
func (db *DB) ListBooks(ctx context.Context, f BookFilter, limit, skip int64) ([]models.Book, int64, error) {
	query := f.query()
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := db.Books().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, 0, err
	}
	total, err := db.Books().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	if err := db.expandBookRefs(ctx, books); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// BookByID returns the book regardless of isDeleted (soft-deleted books stay
// retrievable by id), with category, almirah and reviewer names expanded.
// Returns (nil, nil) when absent.
func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	books := []models.Book{book}
	if err := db.expandBookRefs(ctx, books); err != nil {
		return nil, err
	}
	if err := db.expandReviewUsers(ctx, &books[0]); err != nil {
		return nil, err
	}
	return &books[0], nil
}

// BookByISBN finds a book holding the given ISBN, deleted or not (a
// soft-deleted book keeps its ISBN blocked). exclude skips one record, used
// by updates so a book does not conflict with itself.
func (db *DB) BookByISBN(ctx context.Context, isbn string, exclude *primitive.ObjectID) (*models.Book, error) {
	query := bson.M{"ISBN": isbn}
	if exclude != nil {
		query["_id"] = bson.M{"$ne": *exclude}
	}
	var book models.Book
	err := db.Books().FindOne(ctx, query).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, book)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// UpdateBook applies a full replacement of the writable fields. createdAt,
// isDeleted and reviews are left untouched.
func (db *DB) UpdateBook(ctx context.Context, id primitive.ObjectID, book *models.Book) error {
	update := bson.M{
		"ISBN":      book.ISBN,
		"title":     book.Title,
		"author":    book.Author,
		"edition":   book.Edition,
		"status":    book.Status,
		"category":  book.CategoryID,
		"almirah":   book.AlmirahID,
		"updatedAt": book.UpdatedAt,
	}
	_, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

// SetBookImagePath swaps imagePath after an update persisted a new file.
func (db *DB) SetBookImagePath(ctx context.Context, id primitive.ObjectID, imagePath string) error {
	_, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"imagePath": imagePath}})
	return err
}

// SoftDeleteBook marks the book hidden from lists. Reports whether a book
// with the id existed.
func (db *DB) SoftDeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isDeleted": true}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// expandBookRefs attaches the referenced category and almirah documents to
// each book with two $in lookups.
func (db *DB) expandBookRefs(ctx context.Context, books []models.Book) error {
	if len(books) == 0 {
		return nil
	}
	catIDs := make([]primitive.ObjectID, 0, len(books))
	almIDs := make([]primitive.ObjectID, 0, len(books))
	for i := range books {
		catIDs = append(catIDs, books[i].CategoryID)
		almIDs = append(almIDs, books[i].AlmirahID)
	}

	cur, err := db.Categories().Find(ctx, bson.M{"_id": bson.M{"$in": catIDs}})
	if err != nil {
		return err
	}
	var cats []models.Category
	if err := cur.All(ctx, &cats); err != nil {
		return err
	}
	catByID := make(map[primitive.ObjectID]*models.Category, len(cats))
	for i := range cats {
		catByID[cats[i].ID] = &cats[i]
	}

	cur, err = db.Almirahs().Find(ctx, bson.M{"_id": bson.M{"$in": almIDs}})
	if err != nil {
		return err
	}
	var alms []models.Almirah
	if err := cur.All(ctx, &alms); err != nil {
		return err
	}
	almByID := make(map[primitive.ObjectID]*models.Almirah, len(alms))
	for i := range alms {
		almByID[alms[i].ID] = &alms[i]
	}

	for i := range books {
		books[i].Category = catByID[books[i].CategoryID]
		books[i].Almirah = almByID[books[i].AlmirahID]
	}
	return nil
}

// expandReviewUsers fills each review's user name for the single-book read.
// Only the name is projected; nothing else about the reviewer is exposed.
func (db *DB) expandReviewUsers(ctx context.Context, book *models.Book) error {
	if len(book.Reviews) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(book.Reviews))
	for _, rev := range book.Reviews {
		ids = append(ids, rev.UserID)
	}
	cur, err := db.Users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return err
	}
	nameByID := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Name
	}
	for i := range book.Reviews {
		book.Reviews[i].UserName = nameByID[book.Reviews[i].UserID]
	}
	return nil
}
