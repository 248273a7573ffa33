package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pet status workflow values. Only an approved adoption request moves a pet
// back to PetStatusOwned with a new owner.
const (
	PetStatusOwned       = "Owned"
	PetStatusForAdoption = "For Adoption"
	PetStatusPending     = "Pending"
	PetStatusAdopted     = "Adopted"
)

const (
	PetTypeDog = "Dog"
	PetTypeCat = "Cat"
)

const DefaultPetImage = "/images/sample.jpg"

type Pet struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Name        string             `bson:"name" json:"name"`
	PetType     string             `bson:"petType" json:"petType"`
	Breed       string             `bson:"breed" json:"breed"`
	Age         int                `bson:"age" json:"age"`
	Status      string             `bson:"status" json:"status"`
	Story       string             `bson:"story,omitempty" json:"story,omitempty"`
	ShelterInfo string             `bson:"shelterInfo,omitempty" json:"shelterInfo,omitempty"`
	Image       string             `bson:"image" json:"image"`
	Contact     string             `bson:"contact,omitempty" json:"contact,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func ValidPetType(t string) bool {
	return t == PetTypeDog || t == PetTypeCat
}

func ValidPetStatus(s string) bool {
	switch s {
	case PetStatusOwned, PetStatusForAdoption, PetStatusPending, PetStatusAdopted:
		return true
	}
	return false
}
