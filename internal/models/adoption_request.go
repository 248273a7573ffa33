package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Adoption request states. Approved and Rejected are terminal.
const (
	RequestStatusPending  = "Pending"
	RequestStatusApproved = "Approved"
	RequestStatusRejected = "Rejected"
)

// AdoptionRequest links a user to a pet they want to adopt. Immutable after
// creation except for the status field, which only an admin may change.
type AdoptionRequest struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	Pet           primitive.ObjectID `bson:"pet" json:"pet"`
	ContactNumber string             `bson:"contactNumber" json:"contactNumber"`
	Message       string             `bson:"message" json:"message"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func ValidRequestStatus(s string) bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

func TerminalRequestStatus(s string) bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}
