package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book status values.
const (
	BookAvailable = "Available"
	BookIssued    = "Issued"
	BookLost      = "Lost"
)

var BookStatuses = []string{BookAvailable, BookIssued, BookLost}

type Review struct {
	UserID    primitive.ObjectID `bson:"user" json:"-"`
	Rating    int                `bson:"rating" json:"rating"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	// UserName is filled on single-book reads from the reviewer's record.
	UserName string `bson:"-" json:"user,omitempty"`
}

type Book struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ISBN       string             `bson:"ISBN" json:"ISBN"`
	Title      string             `bson:"title" json:"title"`
	Author     string             `bson:"author,omitempty" json:"author,omitempty"`
	Edition    string             `bson:"edition,omitempty" json:"edition,omitempty"`
	Status     string             `bson:"status" json:"status"`
	CategoryID primitive.ObjectID `bson:"category" json:"-"`
	AlmirahID  primitive.ObjectID `bson:"almirah" json:"-"`
	ImagePath  string             `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	IsDeleted  bool               `bson:"isDeleted" json:"isDeleted"`
	Reviews    []Review           `bson:"reviews,omitempty" json:"reviews,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Expanded references; filled by the store on reads.
	Category *Category `bson:"-" json:"category,omitempty"`
	Almirah  *Almirah  `bson:"-" json:"almirah,omitempty"`
}
