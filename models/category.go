package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

type Almirah struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Number   string             `bson:"number" json:"number"`
	Subject  string             `bson:"subject,omitempty" json:"subject,omitempty"`
	Capacity int                `bson:"capacity,omitempty" json:"capacity,omitempty"`
}

type Departement struct {
	ID   primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name string              `bson:"name" json:"name"`
	HOD  *primitive.ObjectID `bson:"hod,omitempty" json:"hod,omitempty"`
}

type Batch struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name string             `bson:"name" json:"name"`
}
