package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User         primitive.ObjectID `bson:"user" json:"user"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`
	Brand        string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	CountInStock int                `bson:"countInStock" json:"countInStock"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	StockStatus  string             `bson:"-" json:"stockStatus"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
