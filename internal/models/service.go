package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ServiceTypeVetClinic = "Vet Clinic"
	ServiceTypeGroomer   = "Groomer"
	ServiceTypePetShop   = "Pet Shop"
	ServiceTypeBoarding  = "Boarding"
)

// Review is embedded in its parent Service document. Reviews are appended,
// never edited or removed by users; averages are computed by the client.
type Review struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// GeoPoint is a GeoJSON point, longitude first.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// Service is a directory entry for a vet clinic, groomer, shop or boarding
// facility, with reviews contained in the document itself.
type Service struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Type      string             `bson:"type" json:"type"`
	Address   string             `bson:"address" json:"address"`
	Phone     string             `bson:"phone" json:"phone"`
	Location  *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	Reviews   []Review           `bson:"reviews" json:"reviews"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func ValidServiceType(t string) bool {
	switch t {
	case ServiceTypeVetClinic, ServiceTypeGroomer, ServiceTypePetShop, ServiceTypeBoarding:
		return true
	}
	return false
}
