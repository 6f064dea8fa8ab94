package store

import (
	"context"

	"github.com/lms-go/library-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserByEmail returns any user holding the email, regardless of role
// (email is unique across the whole users collection). exclude skips one
// record so an update does not conflict with itself.
func (db *DB) UserByEmail(ctx context.Context, email string, exclude *primitive.ObjectID) (*models.User, error) {
	query := bson.M{"email": email}
	if exclude != nil {
		query["_id"] = bson.M{"$ne": *exclude}
	}
	var u models.User
	err := db.Users().FindOne(ctx, query).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UserByRollNumber(ctx context.Context, rollNumber string, exclude *primitive.ObjectID) (*models.User, error) {
	query := bson.M{"rollNumber": rollNumber}
	if exclude != nil {
		query["_id"] = bson.M{"$ne": *exclude}
	}
	var u models.User
	err := db.Users().FindOne(ctx, query).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := db.Users().InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// StudentFilter carries the student list search parameters; all three are
// case-insensitive substring matches.
type StudentFilter struct {
	Name       string
	Email      string
	RollNumber string
}

func (f StudentFilter) query() bson.M {
	return bson.M{"$and": []bson.M{
		{"role": models.RoleStudent},
		{"name": primitive.Regex{Pattern: f.Name, Options: "i"}},
		{"email": primitive.Regex{Pattern: f.Email, Options: "i"}},
		{"rollNumber": primitive.Regex{Pattern: f.RollNumber, Options: "i"}},
	}}
}

// ListStudents returns one page of students, newest first, with departement
// and batch expanded.
func (db *DB) ListStudents(ctx context.Context, f StudentFilter, limit, skip int64) ([]models.Student, int64, error) {
	query := f.query()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit).
		SetProjection(bson.M{"password": 0})
	cur, err := db.Users().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var students []models.Student
	if err := cur.All(ctx, &students); err != nil {
		return nil, 0, err
	}
	total, err := db.Users().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	if err := db.expandStudentRefs(ctx, students); err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// StudentByID returns (nil, nil) when no student holds the id.
func (db *DB) StudentByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	var s models.Student
	err := db.Users().FindOne(ctx, bson.M{"_id": id, "role": models.RoleStudent},
		options.FindOne().SetProjection(bson.M{"password": 0})).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	students := []models.Student{s}
	if err := db.expandStudentRefs(ctx, students); err != nil {
		return nil, err
	}
	return &students[0], nil
}

// UpdateStudent applies a full replacement of the student's writable fields.
// An empty hashedPassword keeps the stored hash.
func (db *DB) UpdateStudent(ctx context.Context, id primitive.ObjectID, u *models.User, hashedPassword string) error {
	update := bson.M{
		"name":        u.Name,
		"fatherName":  u.FatherName,
		"email":       u.Email,
		"rollNumber":  u.RollNumber,
		"departement": u.DepartementID,
		"batch":       u.BatchID,
		"updatedAt":   u.UpdatedAt,
	}
	if hashedPassword != "" {
		update["password"] = hashedPassword
	}
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": id, "role": models.RoleStudent}, bson.M{"$set": update})
	return err
}

// TeacherFilter carries the teacher list search parameters.
type TeacherFilter struct {
	Name  string
	Email string
}

func (f TeacherFilter) query() bson.M {
	return bson.M{"$and": []bson.M{
		{"role": models.RoleTeacher},
		{"name": primitive.Regex{Pattern: f.Name, Options: "i"}},
		{"email": primitive.Regex{Pattern: f.Email, Options: "i"}},
	}}
}

func (db *DB) ListTeachers(ctx context.Context, f TeacherFilter, limit, skip int64) ([]models.User, int64, error) {
	query := f.query()
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit).
		SetProjection(bson.M{"password": 0})
	cur, err := db.Users().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var teachers []models.User
	if err := cur.All(ctx, &teachers); err != nil {
		return nil, 0, err
	}
	total, err := db.Users().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return teachers, total, nil
}

func (db *DB) TeacherByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"_id": id, "role": models.RoleTeacher},
		options.FindOne().SetProjection(bson.M{"password": 0})).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateTeacher applies a full replacement of the teacher's writable fields.
// An empty hashedPassword keeps the stored hash.
func (db *DB) UpdateTeacher(ctx context.Context, id primitive.ObjectID, u *models.User, hashedPassword string) error {
	update := bson.M{
		"name":      u.Name,
		"email":     u.Email,
		"updatedAt": u.UpdatedAt,
	}
	if hashedPassword != "" {
		update["password"] = hashedPassword
	}
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": id, "role": models.RoleTeacher}, bson.M{"$set": update})
	return err
}

// DeleteUser hard-deletes a user with the given role. Reports whether a
// record was removed.
func (db *DB) DeleteUser(ctx context.Context, id primitive.ObjectID, role string) (bool, error) {
	res, err := db.Users().DeleteOne(ctx, bson.M{"_id": id, "role": role})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (db *DB) expandStudentRefs(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	var deptIDs, batchIDs []primitive.ObjectID
	for i := range students {
		if students[i].DepartementID != nil {
			deptIDs = append(deptIDs, *students[i].DepartementID)
		}
		if students[i].BatchID != nil {
			batchIDs = append(batchIDs, *students[i].BatchID)
		}
	}

	deptByID := make(map[primitive.ObjectID]*models.Departement)
	if len(deptIDs) > 0 {
		// hod is excluded from the expansion, matching the read contract.
		cur, err := db.Departements().Find(ctx, bson.M{"_id": bson.M{"$in": deptIDs}},
			options.Find().SetProjection(bson.M{"hod": 0}))
		if err != nil {
			return err
		}
		var depts []models.Departement
		if err := cur.All(ctx, &depts); err != nil {
			return err
		}
		for i := range depts {
			deptByID[depts[i].ID] = &depts[i]
		}
	}

	batchByID := make(map[primitive.ObjectID]*models.Batch)
	if len(batchIDs) > 0 {
		cur, err := db.Batches().Find(ctx, bson.M{"_id": bson.M{"$in": batchIDs}})
		if err != nil {
			return err
		}
		var batches []models.Batch
		if err := cur.All(ctx, &batches); err != nil {
			return err
		}
		for i := range batches {
			batchByID[batches[i].ID] = &batches[i]
		}
	}

	for i := range students {
		if students[i].DepartementID != nil {
			students[i].Departement = deptByID[*students[i].DepartementID]
		}
		if students[i].BatchID != nil {
			students[i].Batch = batchByID[*students[i].BatchID]
		}
	}
	return nil
}
