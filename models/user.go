package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role constants. Students, teachers and admins share one users collection
// discriminated by role.
const (
	RoleStudent = "Student"
	RoleTeacher = "Teacher"
	RoleAdmin   = "Admin"
)

// Account status values.
const (
	AccountActive  = "Active"
	AccountBlocked = "Blocked"
)

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Password      string             `bson:"password,omitempty" json:"-"` // bcrypt hash
	Role          string             `bson:"role" json:"role"`
	AccountStatus string             `bson:"accountStatus" json:"accountStatus"`
	ImagePath     string             `bson:"imagePath,omitempty" json:"imagePath,omitempty"`

	// Student-only fields.
	FatherName    string              `bson:"fatherName,omitempty" json:"fatherName,omitempty"`
	RollNumber    string              `bson:"rollNumber,omitempty" json:"rollNumber,omitempty"`
	DepartementID *primitive.ObjectID `bson:"departement,omitempty" json:"-"`
	BatchID       *primitive.ObjectID `bson:"batch,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Student is the read shape for student endpoints: departement and batch are
// expanded into their documents instead of raw object ids.
type Student struct {
	User        `bson:",inline"`
	Departement *Departement `bson:"-" json:"departement,omitempty"`
	Batch       *Batch       `bson:"-" json:"batch,omitempty"`
}
